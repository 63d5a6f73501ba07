package service

import (
	"context"
	"errors"
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
	"github.com/nmoreno/impostor-server/internal/store"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	// codeRetries bounds collision retries during code generation. The space
	// is 36^6; hitting the bound means the store is broken, not full.
	codeRetries = 10
)

// SessionService owns session lifecycle: creation with a unique join code,
// membership changes with host succession, and teardown.
type SessionService struct {
	sessions store.SessionStore
	messages store.MessageStore
	logger   *zap.Logger
}

func NewSessionService(sessions store.SessionStore, messages store.MessageStore, logger *zap.Logger) *SessionService {
	return &SessionService{sessions: sessions, messages: messages, logger: logger}
}

// Create makes a new session in the lobby phase with the caller as host.
func (s *SessionService) Create(ctx context.Context, hostID, hostName string) (*domain.Session, error) {
	code, err := s.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	session := domain.NewSession(uuid.NewString(), code, hostID, hostName)
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session created",
		zap.String("code", code),
		zap.String("hostId", hostID))
	return session, nil
}

func (s *SessionService) generateCode(ctx context.Context) (string, error) {
	for i := 0; i < codeRetries; i++ {
		code := randomCode()
		_, err := s.sessions.Get(ctx, code)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("could not generate a unique session code")
}

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func (s *SessionService) Get(ctx context.Context, code string) (*domain.Session, error) {
	return s.sessions.Get(ctx, code)
}

func (s *SessionService) Save(ctx context.Context, session *domain.Session) error {
	return s.sessions.Put(ctx, session)
}

// Delete tears down the session and its chat history.
func (s *SessionService) Delete(ctx context.Context, code string) error {
	if err := s.messages.DeleteMessages(ctx, code); err != nil {
		s.logger.Warn("failed to delete chat history", zap.String("code", code), zap.Error(err))
	}
	return s.sessions.Delete(ctx, code)
}

// Join adds a participant. Rejoining with a known ID succeeds in any phase;
// new IDs are accepted in the lobby and between rounds, and rejected while a
// round is running or the session is full.
func (s *SessionService) Join(ctx context.Context, code, playerID, playerName string) (*domain.Session, *domain.Participant, error) {
	session, err := s.sessions.Get(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	if existing, ok := session.Participants[playerID]; ok {
		return session, existing, nil
	}

	if session.Phase != domain.PhaseLobby && session.Phase != domain.PhaseResults {
		return nil, nil, domain.ErrGameInProgress
	}
	if len(session.Participants) >= domain.MaxParticipants {
		return nil, nil, domain.ErrSessionFull
	}

	p := &domain.Participant{
		ID:     playerID,
		Name:   playerName,
		Color:  domain.AvailableColor(session.Participants),
		Status: domain.StatusAlive,
	}
	session.Participants[playerID] = p

	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, nil, err
	}

	s.logger.Info("player joined",
		zap.String("code", code),
		zap.String("playerId", playerID),
		zap.Int("players", len(session.Participants)))
	return session, p, nil
}

// Leave removes a participant. When the host leaves the role passes to the
// remaining participant with the smallest ID; when the last participant
// leaves the session is deleted and (nil, true, nil) is returned.
func (s *SessionService) Leave(ctx context.Context, code, playerID string) (*domain.Session, bool, error) {
	session, err := s.sessions.Get(ctx, code)
	if err != nil {
		return nil, false, err
	}

	if _, ok := session.Participants[playerID]; !ok {
		return session, false, domain.ErrParticipantNotFound
	}
	delete(session.Participants, playerID)
	delete(session.Clues, playerID)
	delete(session.Votes, playerID)

	if len(session.Participants) == 0 {
		if err := s.Delete(ctx, code); err != nil {
			return nil, false, err
		}
		s.logger.Info("session deleted, last player left", zap.String("code", code))
		return nil, true, nil
	}

	if session.HostID == playerID {
		session.HostID = session.NextHost()
		s.logger.Info("host reassigned",
			zap.String("code", code),
			zap.String("hostId", session.HostID))
	}

	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, false, err
	}
	return session, false, nil
}
