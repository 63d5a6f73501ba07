package testutil

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nmoreno/impostor-server/internal/domain"
)

// NewLobbySession builds a lobby with n participants named p1..pn, p1 hosting.
func NewLobbySession(code string, n int) *domain.Session {
	s := domain.NewSession(uuid.NewString(), code, "p1", "Player 1")
	for i := 2; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		s.Participants[id] = &domain.Participant{
			ID:     id,
			Name:   fmt.Sprintf("Player %d", i),
			Color:  domain.AvailableColor(s.Participants),
			Status: domain.StatusAlive,
		}
	}
	return s
}

// NewRoundSession builds a session mid-round: clue phase armed, p1 hosting,
// the given participant playing impostor.
func NewRoundSession(code string, n int, impostorID, word, category string) *domain.Session {
	s := NewLobbySession(code, n)
	s.Phase = domain.PhaseClues
	s.Round = 1
	s.ImpostorID = impostorID
	s.CurrentWord = word
	s.CurrentCategory = category
	s.TimeLeft = s.CluesTime
	for id, p := range s.Participants {
		if id == impostorID {
			p.Role = domain.RoleImpostor
		} else {
			p.Role = domain.RolePlayer
		}
	}
	return s
}
