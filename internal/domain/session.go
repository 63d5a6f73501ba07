package domain

import (
	"math/rand"
	"sort"
	"time"
)

type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseClues      Phase = "clues"
	PhaseDiscussion Phase = "discussion"
	PhaseVoting     Phase = "voting"
	PhaseResults    Phase = "results"
)

// Active reports whether the phase has a running countdown.
func (p Phase) Active() bool {
	return p == PhaseClues || p == PhaseDiscussion || p == PhaseVoting
}

type Role string

const (
	RolePlayer   Role = "player"
	RoleImpostor Role = "impostor"
)

type ParticipantStatus string

const (
	StatusAlive      ParticipantStatus = "alive"
	StatusEliminated ParticipantStatus = "eliminated"
)

type Winner string

const (
	WinnerPlayers  Winner = "players"
	WinnerImpostor Winner = "impostor"
)

// VoteSkip is the virtual "no ejection" vote target.
const VoteSkip = "skip"

// MaxParticipants caps a session at the size of the color palette.
const MaxParticipants = 12

type Color string

// ColorPalette holds the 12 distinct participant colors.
var ColorPalette = []Color{
	"red", "blue", "green", "pink", "orange", "yellow",
	"purple", "cyan", "white", "brown", "lime", "black",
}

type Participant struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Color        Color             `json:"color"`
	Role         Role              `json:"role,omitempty"`
	Status       ParticipantStatus `json:"status"`
	HasGivenClue bool              `json:"hasGivenClue"`
	Clue         string            `json:"clue,omitempty"`
	HasVoted     bool              `json:"hasVoted"`
	Points       int               `json:"points"`
}

// Session is the aggregate root for one game room, identified by its join code.
type Session struct {
	ID              string                  `json:"id"`
	Code            string                  `json:"code"`
	Phase           Phase                   `json:"phase"`
	HostID          string                  `json:"hostId"`
	Participants    map[string]*Participant `json:"players"`
	CurrentWord     string                  `json:"currentWord"`
	CurrentCategory string                  `json:"currentCategory"`
	ImpostorID      string                  `json:"impostorId"`
	Clues           map[string]string       `json:"clues"`
	Votes           map[string]string       `json:"votes"`
	Round           int                     `json:"round"`
	MaxRounds       int                     `json:"maxRounds"`
	CluesTime       int                     `json:"cluesTime"`
	DiscussionTime  int                     `json:"discussionTime"`
	VotingTime      int                     `json:"votingTime"`
	TimeLeft        int                     `json:"timeLeft"`
	ChangeImpostor  bool                    `json:"changeImpostorEachRound"`
	Winner          Winner                  `json:"winner,omitempty"`
	CreatedAt       int64                   `json:"createdAt"`
}

// Default phase durations and round cap for a fresh session, in seconds.
const (
	DefaultMaxRounds      = 5
	DefaultCluesTime      = 180
	DefaultDiscussionTime = 180
	DefaultVotingTime     = 60
)

// Settings bounds enforced on host updates.
const (
	MinRounds             = 1
	MaxRounds             = 10
	MinCluesTime          = 30
	MaxCluesTime          = 600
	MinDiscussionTime     = 30
	MaxDiscussionTime     = 600
	MinVotingTime         = 10
	MaxVotingTime         = 300
)

func NewSession(id, code, hostID, hostName string) *Session {
	host := &Participant{
		ID:     hostID,
		Name:   hostName,
		Color:  AvailableColor(nil),
		Status: StatusAlive,
	}

	return &Session{
		ID:             id,
		Code:           code,
		Phase:          PhaseLobby,
		HostID:         hostID,
		Participants:   map[string]*Participant{hostID: host},
		Clues:          make(map[string]string),
		Votes:          make(map[string]string),
		Round:          0,
		MaxRounds:      DefaultMaxRounds,
		CluesTime:      DefaultCluesTime,
		DiscussionTime: DefaultDiscussionTime,
		VotingTime:     DefaultVotingTime,
		CreatedAt:      time.Now().UnixMilli(),
	}
}

// AvailableColor returns the first palette color not in use. With the palette
// exhausted (which the participant cap prevents outside transient races) it
// falls back to a random palette color.
func AvailableColor(participants map[string]*Participant) Color {
	used := make(map[Color]bool, len(participants))
	for _, p := range participants {
		used[p.Color] = true
	}
	for _, c := range ColorPalette {
		if !used[c] {
			return c
		}
	}
	return ColorPalette[rand.Intn(len(ColorPalette))]
}

// AliveParticipants returns alive participants sorted by ID for deterministic
// iteration.
func (s *Session) AliveParticipants() []*Participant {
	alive := make([]*Participant, 0, len(s.Participants))
	for _, p := range s.Participants {
		if p.Status == StatusAlive {
			alive = append(alive, p)
		}
	}
	sort.Slice(alive, func(i, j int) bool { return alive[i].ID < alive[j].ID })
	return alive
}

// NextHost picks the successor when the host leaves: the lexicographically
// smallest remaining participant ID. Go map iteration is randomized, so the
// tie-break has to be explicit to be testable.
func (s *Session) NextHost() string {
	next := ""
	for id := range s.Participants {
		if next == "" || id < next {
			next = id
		}
	}
	return next
}

func (s *Session) AllAliveGaveClue() bool {
	for _, p := range s.Participants {
		if p.Status == StatusAlive && !p.HasGivenClue {
			return false
		}
	}
	return true
}

func (s *Session) AllAliveVoted() bool {
	for _, p := range s.Participants {
		if p.Status == StatusAlive && !p.HasVoted {
			return false
		}
	}
	return true
}

// SettingsUpdate carries a host settings change. Zero values leave the
// current setting untouched; everything else is clamped into bounds.
type SettingsUpdate struct {
	MaxRounds      int   `json:"maxRounds"`
	CluesTime      int   `json:"cluesTime"`
	DiscussionTime int   `json:"discussionTime"`
	VotingTime     int   `json:"votingTime"`
	ChangeImpostor *bool `json:"changeImpostorEachRound,omitempty"`
}

// ApplySettings clamps and applies a settings update. The session ends up
// holding the clamped values, which are what gets broadcast.
func (s *Session) ApplySettings(u SettingsUpdate) {
	if u.MaxRounds != 0 {
		s.MaxRounds = clamp(u.MaxRounds, MinRounds, MaxRounds)
	}
	if u.CluesTime != 0 {
		s.CluesTime = clamp(u.CluesTime, MinCluesTime, MaxCluesTime)
	}
	if u.DiscussionTime != 0 {
		s.DiscussionTime = clamp(u.DiscussionTime, MinDiscussionTime, MaxDiscussionTime)
	}
	if u.VotingTime != 0 {
		s.VotingTime = clamp(u.VotingTime, MinVotingTime, MaxVotingTime)
	}
	if u.ChangeImpostor != nil {
		s.ChangeImpostor = *u.ChangeImpostor
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ViewFor projects the session for one recipient: the impostor never sees the
// secret word or its category. The canonical session is left untouched; the
// word is hidden on a copy at broadcast time.
func (s *Session) ViewFor(participantID string) *Session {
	p, ok := s.Participants[participantID]
	if !ok || p.Role != RoleImpostor {
		return s
	}
	view := *s
	view.CurrentWord = ""
	view.CurrentCategory = ""
	return &view
}
