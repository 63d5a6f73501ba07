package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmoreno/impostor-server/internal/domain"
)

func newParticipants(ids ...string) map[string]*domain.Participant {
	m := make(map[string]*domain.Participant, len(ids))
	for _, id := range ids {
		m[id] = &domain.Participant{ID: id, Name: id, Status: domain.StatusAlive}
	}
	return m
}

func newRoundSession(impostorID string, ids ...string) *domain.Session {
	s := &domain.Session{
		Code:           "ABC123",
		Phase:          domain.PhaseVoting,
		Participants:   newParticipants(ids...),
		ImpostorID:     impostorID,
		CurrentWord:    "mesa",
		Clues:          make(map[string]string),
		Votes:          make(map[string]string),
		Round:          1,
		MaxRounds:      5,
		CluesTime:      180,
		DiscussionTime: 180,
		VotingTime:     60,
	}
	for id, p := range s.Participants {
		if id == impostorID {
			p.Role = domain.RoleImpostor
		} else {
			p.Role = domain.RolePlayer
		}
	}
	return s
}

func TestAssignImpostorExactlyOne(t *testing.T) {
	participants := newParticipants("p1", "p2", "p3", "p4")
	participants["p4"].Status = domain.StatusEliminated

	impostorID, err := AssignImpostor(participants)
	require.NoError(t, err)

	assert.NotEqual(t, "p4", impostorID, "eliminated participants must not be picked")

	impostors := 0
	for _, p := range participants {
		if p.Role == domain.RoleImpostor {
			impostors++
			assert.Equal(t, impostorID, p.ID)
		} else {
			assert.Equal(t, domain.RolePlayer, p.Role)
		}
	}
	assert.Equal(t, 1, impostors)
}

func TestAssignImpostorCoversAllAlive(t *testing.T) {
	picked := make(map[string]bool)
	for i := 0; i < 200; i++ {
		participants := newParticipants("p1", "p2", "p3", "p4")
		id, err := AssignImpostor(participants)
		require.NoError(t, err)
		picked[id] = true
	}
	assert.Len(t, picked, 4, "every alive participant should be picked eventually")
}

func TestAssignImpostorIsUniform(t *testing.T) {
	const trials = 8000
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		participants := newParticipants("p1", "p2", "p3", "p4")
		id, err := AssignImpostor(participants)
		require.NoError(t, err)
		counts[id]++
	}

	// Each of the 4 should land near 1/4. A delta of 0.03 keeps the test
	// stable at this trial count while still catching a biased shuffle.
	require.Len(t, counts, 4)
	for id, n := range counts {
		assert.InDelta(t, 0.25, float64(n)/trials, 0.03, "selection frequency for %s", id)
	}
}

func TestAssignImpostorNoAlive(t *testing.T) {
	participants := newParticipants("p1")
	participants["p1"].Status = domain.StatusEliminated

	_, err := AssignImpostor(participants)
	assert.ErrorIs(t, err, domain.ErrNoAliveParticipants)
}

func TestStartRound(t *testing.T) {
	s := newRoundSession("p1", "p1", "p2", "p3")
	s.Phase = domain.PhaseResults
	s.Clues["p1"] = "old"
	s.Votes["p2"] = "p1"
	s.Participants["p2"].HasGivenClue = true
	s.Participants["p2"].HasVoted = true
	s.Participants["p2"].Clue = "old"

	require.NoError(t, StartRound(s, "playa", "lugares"))

	assert.Equal(t, 2, s.Round)
	assert.Equal(t, domain.PhaseClues, s.Phase)
	assert.Equal(t, s.CluesTime, s.TimeLeft)
	assert.Equal(t, "playa", s.CurrentWord)
	assert.Equal(t, "lugares", s.CurrentCategory)
	assert.Empty(t, s.Clues)
	assert.Empty(t, s.Votes)
	assert.NotEmpty(t, s.ImpostorID)
	assert.False(t, s.Participants["p2"].HasGivenClue)
	assert.False(t, s.Participants["p2"].HasVoted)
	assert.Empty(t, s.Participants["p2"].Clue)
}

func TestProcessVotesMajorityEjectsImpostor(t *testing.T) {
	s := newRoundSession("p4", "p1", "p2", "p3", "p4")
	s.Votes = map[string]string{
		"p1": "p4",
		"p2": "p4",
		"p3": domain.VoteSkip,
	}
	for _, id := range []string{"p1", "p2", "p3"} {
		s.Participants[id].HasVoted = true
	}
	s.Participants["p1"].HasGivenClue = true

	res := ProcessVotes(s)

	assert.Equal(t, domain.WinnerPlayers, res.Winner)
	assert.Equal(t, "p4", res.EjectedID)
	assert.False(t, res.IsTie)

	// base 20 + alive 5 + clue 5 + correct vote 10
	assert.Equal(t, 40, s.Participants["p1"].Points)
	// base 20 + alive 5 + correct vote 10
	assert.Equal(t, 35, s.Participants["p2"].Points)
	// skip vote earns no vote bonus
	assert.Equal(t, 25, s.Participants["p3"].Points)
	assert.Equal(t, 0, s.Participants["p4"].Points)
}

func TestProcessVotesWrongEjection(t *testing.T) {
	s := newRoundSession("p3", "p1", "p2", "p3")
	s.Votes = map[string]string{
		"p1": "p2",
		"p2": domain.VoteSkip,
		"p3": "p2",
	}
	s.Participants["p3"].HasGivenClue = true

	res := ProcessVotes(s)

	assert.Equal(t, domain.WinnerImpostor, res.Winner)
	assert.Equal(t, "p2", res.EjectedID)

	// escape 30 + unnoticed 20 + clue 10
	assert.Equal(t, 60, s.Participants["p3"].Points)
}

func TestProcessVotesTieGoesToImpostor(t *testing.T) {
	s := newRoundSession("p3", "p1", "p2", "p3")
	s.Votes = map[string]string{
		"p1": "p2",
		"p2": "p1",
	}
	s.Participants["p3"].HasGivenClue = true

	res := ProcessVotes(s)

	assert.Equal(t, domain.WinnerImpostor, res.Winner)
	assert.True(t, res.IsTie)
	assert.Empty(t, res.EjectedID)

	// tie base 25 + genuine tie 15 + clue 10
	assert.Equal(t, 50, s.Participants["p3"].Points)
}

func TestProcessVotesSkipMajority(t *testing.T) {
	s := newRoundSession("p3", "p1", "p2", "p3")
	s.Votes = map[string]string{
		"p1": domain.VoteSkip,
		"p2": domain.VoteSkip,
		"p3": "p1",
	}

	res := ProcessVotes(s)

	assert.Equal(t, domain.WinnerImpostor, res.Winner)
	assert.Empty(t, res.EjectedID)

	// tie base 25 only: a skip majority is not a genuine tie
	assert.Equal(t, 25, s.Participants["p3"].Points)
}

func TestProcessVotesNobodyVoted(t *testing.T) {
	s := newRoundSession("p3", "p1", "p2", "p3")

	res := ProcessVotes(s)

	assert.Equal(t, domain.WinnerImpostor, res.Winner)
	assert.Empty(t, res.EjectedID)
	assert.Equal(t, 25, s.Participants["p3"].Points)
}

func TestProcessVotesDeterministicOnEqualTallies(t *testing.T) {
	for i := 0; i < 20; i++ {
		s := newRoundSession("p4", "p1", "p2", "p3", "p4")
		s.Votes = map[string]string{
			"p1": "p2",
			"p2": "p3",
		}
		res := ProcessVotes(s)
		assert.True(t, res.IsTie)
		assert.Equal(t, domain.WinnerImpostor, res.Winner)
	}
}

func TestGuessPoints(t *testing.T) {
	assert.Equal(t, 62, GuessPoints(120))
	assert.Equal(t, 50, GuessPoints(0))
	assert.Equal(t, 50, GuessPoints(-5))
	assert.Equal(t, 50, GuessPoints(9))
}

func TestCheckWordGuess(t *testing.T) {
	assert.True(t, CheckWordGuess("MESA", "mesa"))
	assert.True(t, CheckWordGuess("café", "cafe"))
	assert.True(t, CheckWordGuess("cafe", "café"))
	assert.True(t, CheckWordGuess("  mesa  ", "mesa"))
	assert.False(t, CheckWordGuess("mesas", "mesa"))
	assert.False(t, CheckWordGuess("", "mesa"))
}

func TestCheckGameEnd(t *testing.T) {
	s := newRoundSession("p3", "p1", "p2", "p3")
	s.Round = 2
	assert.Equal(t, domain.Winner(""), CheckGameEnd(s), "game continues before the round cap")

	s.Round = s.MaxRounds
	s.Participants["p1"].Points = 30
	s.Participants["p2"].Points = 30
	s.Participants["p3"].Points = 50
	assert.Equal(t, domain.WinnerPlayers, CheckGameEnd(s))

	s.Participants["p3"].Points = 60
	assert.Equal(t, domain.WinnerImpostor, CheckGameEnd(s), "impostor wins the tie")
}
