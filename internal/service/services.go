package service

import (
	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/store"
)

type Services struct {
	Sessions *SessionService
	Games    *GameService
	Chat     *ChatService
	Timers   *TimerService
	Stats    *StatsService
}

func NewServices(sessions store.SessionStore, messages store.MessageStore, results store.ResultStore, source WordSource, logger *zap.Logger) *Services {
	stats := NewStatsService(results, logger)
	timers := NewTimerService(sessions, logger)
	games := NewGameService(sessions, stats, source, timers, logger)

	return &Services{
		Sessions: NewSessionService(sessions, messages, logger),
		Games:    games,
		Chat:     NewChatService(sessions, messages, logger),
		Timers:   timers,
		Stats:    stats,
	}
}

// SetBroadcaster wires the transport in after construction, once the hub
// exists.
func (s *Services) SetBroadcaster(b Broadcaster) {
	s.Games.SetBroadcaster(b)
	s.Timers.SetBroadcaster(b)
}
