package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-channel-broadcast/internal/config"
	"telegram-channel-broadcast/internal/infra/metrics"
	"telegram-channel-broadcast/internal/infra/redis"
	"telegram-channel-broadcast/internal/usecase"
)

// Per-user command throttle. Generous because the whole user base is the
// owner plus a handful of sudo users.
const (
	rateLimit       = 20
	rateLimitWindow = time.Minute
)

// RealTelegramBotAdapter runs the bot: it polls Telegram for updates,
// processes them concurrently, and routes commands, collected posts and
// callback presses into the use cases.
type RealTelegramBotAdapter struct {
	bot       *tgbotapi.BotAPI
	cfg       *config.BotConfig
	directory *usecase.DirectoryUseCase
	broadcast *usecase.BroadcastUseCase
	limiter   *redis.RateLimiter
	gateway   *Gateway
	log       *zerolog.Logger

	// updateWorkers is how many goroutines will concurrently process updates.
	updateWorkers int
	cancelPolling context.CancelFunc

	// principals the bot is waiting on for a schedule timestamp
	mu               sync.Mutex
	awaitingSchedule map[int64]struct{}
}

// NewRealTelegramBotAdapter builds the bot client. The broadcast use case is
// attached afterwards with SetBroadcast because its dispatcher sends through
// this same client.
func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	directory *usecase.DirectoryUseCase,
	limiter *redis.RateLimiter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if directory == nil {
		return nil, errors.New("directory use case is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	l := logger.With().Str("component", "TelegramBot").Logger()
	return &RealTelegramBotAdapter{
		bot:              bot,
		cfg:              cfg,
		directory:        directory,
		limiter:          limiter,
		gateway:          NewGateway(bot),
		log:              &l,
		updateWorkers:    workers,
		awaitingSchedule: make(map[int64]struct{}),
	}, nil
}

// Gateway returns the outbound channel gateway backed by the same bot client.
func (r *RealTelegramBotAdapter) Gateway() *Gateway {
	return r.gateway
}

// SetBroadcast attaches the broadcast use case. Must happen before
// StartPolling.
func (r *RealTelegramBotAdapter) SetBroadcast(broadcast *usecase.BroadcastUseCase) {
	r.broadcast = broadcast
}

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.broadcast == nil {
		return errors.New("broadcast use case not attached")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, update); err != nil {
						r.log.Error().Err(err).Int("worker", workerID).Msg("error handling update")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	// Dispatcher goroutine: feed updates into updateChan
	go func() {
		defer close(updateChan)
		for {
			select {
			case update := <-updates:
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	r.bot.StopReceivingUpdates()
	wg.Wait()
	return nil
}

// StopPolling stops the polling loop gracefully.
func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) replyWithMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	_, err := r.bot.Send(msg)
	return err
}

// handleUpdate processes a single Telegram update.
func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil {
		return nil
	}
	msg := update.Message
	from := msg.From
	if from == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
		// the bot is operated over direct messages only
		return nil
	}

	// Everyone may see /start and /help; everything else needs authorization.
	if msg.IsCommand() {
		return r.handleCommand(ctx, msg)
	}

	if !r.directory.IsAuthorized(ctx, from.ID) {
		return nil
	}

	// A plain message is either the awaited schedule timestamp or a post for
	// a collecting session.
	if r.takeAwaitingSchedule(from.ID) {
		return r.handleScheduleInput(ctx, msg)
	}
	return r.handleCollect(ctx, msg)
}

// allowCommand applies the per-user rate limit. Fails open when Redis is
// unavailable so a cache outage never locks the operator out.
func (r *RealTelegramBotAdapter) allowCommand(ctx context.Context, userID int64, command string) bool {
	if r.limiter == nil {
		return true
	}
	ok, err := r.limiter.Allow(ctx, redis.UserCommandKey(userID, command), rateLimit, rateLimitWindow)
	if err != nil {
		r.log.Warn().Err(err).Int64("user_id", userID).Msg("rate limiter unavailable")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered()
	}
	return ok
}

func (r *RealTelegramBotAdapter) setAwaitingSchedule(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.awaitingSchedule[userID] = struct{}{}
}

// takeAwaitingSchedule consumes the pending-schedule flag if set.
func (r *RealTelegramBotAdapter) takeAwaitingSchedule(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.awaitingSchedule[userID]; !ok {
		return false
	}
	delete(r.awaitingSchedule, userID)
	return true
}

func (r *RealTelegramBotAdapter) clearAwaitingSchedule(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.awaitingSchedule, userID)
}
