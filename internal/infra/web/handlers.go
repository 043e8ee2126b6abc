package web

import (
	"encoding/json"
	"net/http"
	"time"
)

type channelDTO struct {
	ChannelID string    `json:"channel_id"`
	Title     string    `json:"title"`
	AddedBy   int64     `json:"added_by"`
	AddedAt   time.Time `json:"added_at"`
	Active    bool      `json:"active"`
}

type sudoUserDTO struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	AddedBy  int64     `json:"added_by"`
	AddedAt  time.Time `json:"added_at"`
}

func (s *Server) channelsListHandler(w http.ResponseWriter, r *http.Request) {
	channels, err := s.directory.ListChannels(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("channels list failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	out := make([]channelDTO, 0, len(channels))
	for _, ch := range channels {
		out = append(out, channelDTO{
			ChannelID: ch.ID,
			Title:     ch.Title,
			AddedBy:   ch.AddedBy,
			AddedAt:   ch.AddedAt,
			Active:    ch.Active,
		})
	}
	writeJSON(w, out)
}

func (s *Server) sudoListHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.directory.ListSudoUsers(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("sudo list failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	out := make([]sudoUserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, sudoUserDTO{
			UserID:   u.UserID,
			Username: u.Username,
			AddedBy:  u.AddedBy,
			AddedAt:  u.AddedAt,
		})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
