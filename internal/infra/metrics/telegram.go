package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		channelsRegisteredTotal,
		sudoUsersTotal,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands from users.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	channelsRegisteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_channels_registered_total",
			Help: "Channel registrations by outcome.",
		},
		[]string{"outcome"},
	)

	sudoUsersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_sudo_changes_total",
			Help: "Sudo-user grants and revocations.",
		},
		[]string{"action"},
	)
)

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() { telegramRateLimitTriggeredTotal.Inc() }

func IncChannelRegistered(outcome string) {
	channelsRegisteredTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncSudoChange(action string) {
	sudoUsersTotal.WithLabelValues(norm(action)).Inc()
}
