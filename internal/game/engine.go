// Package game holds the pure round logic: role assignment, vote resolution,
// scoring, word matching and end-of-game evaluation. Nothing here touches
// storage or the network.
package game

import (
	"math/rand"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nmoreno/impostor-server/internal/domain"
)

// Scoring constants. Honest participants land in 20-40 per won round, the
// impostor in 25-60 depending on how the round fell.
const (
	playerBasePoints      = 20
	playerCluePoints      = 5
	playerCorrectVote     = 10
	playerAliveBonus      = 5
	impostorBasePoints    = 30
	impostorUnnoticed     = 20
	impostorCluePoints    = 10
	impostorTieBase       = 25
	impostorTieBonus      = 15
	impostorGuessPoints   = 50
	impostorGuessTimeDiv  = 10
)

// AssignImpostor picks the impostor uniformly among alive participants with a
// Fisher-Yates shuffle and sets every participant's role accordingly.
func AssignImpostor(participants map[string]*domain.Participant) (string, error) {
	alive := make([]string, 0, len(participants))
	for id, p := range participants {
		if p.Status == domain.StatusAlive {
			alive = append(alive, id)
		}
	}
	if len(alive) == 0 {
		return "", domain.ErrNoAliveParticipants
	}

	for i := len(alive) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		alive[i], alive[j] = alive[j], alive[i]
	}
	impostorID := alive[0]

	for id, p := range participants {
		if id == impostorID {
			p.Role = domain.RoleImpostor
		} else {
			p.Role = domain.RolePlayer
		}
	}
	return impostorID, nil
}

// StartRound advances the session into a new round: new impostor, new secret
// word, cleared clues and votes, per-round participant flags reset, clue
// phase armed with its full duration.
func StartRound(s *domain.Session, word, category string) error {
	impostorID, err := AssignImpostor(s.Participants)
	if err != nil {
		return err
	}
	s.ImpostorID = impostorID
	s.CurrentWord = word
	s.CurrentCategory = category

	s.Clues = make(map[string]string)
	s.Votes = make(map[string]string)
	s.Round++
	s.Phase = domain.PhaseClues
	s.TimeLeft = s.CluesTime
	s.Winner = ""

	for _, p := range s.Participants {
		if p.Status == domain.StatusAlive {
			p.HasGivenClue = false
			p.Clue = ""
			p.HasVoted = false
		}
	}
	return nil
}

// VoteResult is the outcome of tallying one round's votes.
type VoteResult struct {
	EjectedID string
	IsTie     bool
	Winner    domain.Winner
}

// ProcessVotes tallies the round's votes and awards points. Skip votes count
// toward a virtual no-ejection bucket; only a strict maximum ejects. Any tie
// with the maximum (including the skip bucket, and the nobody-voted case
// where both are zero) goes to the impostor.
func ProcessVotes(s *domain.Session) VoteResult {
	counts := make(map[string]int)
	skipVotes := 0
	for _, target := range s.Votes {
		if target == domain.VoteSkip {
			skipVotes++
		} else {
			counts[target]++
		}
	}

	targets := make([]string, 0, len(counts))
	for id := range counts {
		targets = append(targets, id)
	}
	sort.Strings(targets)

	maxVotes := skipVotes
	ejected := ""
	isTie := false
	// Deterministic iteration so tied tallies resolve the same way every run.
	for _, id := range targets {
		count := counts[id]
		if count > maxVotes {
			maxVotes = count
			ejected = id
			isTie = false
		} else if count == maxVotes && maxVotes > 0 {
			isTie = true
		}
	}

	res := VoteResult{IsTie: isTie}

	switch {
	case !isTie && ejected != "":
		if ejected == s.ImpostorID {
			res.Winner = domain.WinnerPlayers
			res.EjectedID = ejected
			awardPlayers(s)
		} else {
			res.Winner = domain.WinnerImpostor
			res.EjectedID = ejected
			awardImpostorEscape(s)
		}
	default:
		// Tie, skip majority, or nobody voted at all.
		res.Winner = domain.WinnerImpostor
		awardImpostorTie(s, isTie)
	}
	return res
}

func awardPlayers(s *domain.Session) {
	for _, p := range s.Participants {
		if p.ID == s.ImpostorID || p.Status != domain.StatusAlive {
			continue
		}
		points := playerBasePoints + playerAliveBonus
		if p.HasGivenClue {
			points += playerCluePoints
		}
		if p.HasVoted && s.Votes[p.ID] == s.ImpostorID {
			points += playerCorrectVote
		}
		p.Points += points
	}
}

func awardImpostorEscape(s *domain.Session) {
	impostor, ok := s.Participants[s.ImpostorID]
	if !ok {
		return
	}
	points := impostorBasePoints
	votesAgainst := 0
	for _, target := range s.Votes {
		if target == s.ImpostorID {
			votesAgainst++
		}
	}
	if votesAgainst == 0 {
		points += impostorUnnoticed
	}
	if impostor.HasGivenClue {
		points += impostorCluePoints
	}
	impostor.Points += points
}

func awardImpostorTie(s *domain.Session, isTie bool) {
	impostor, ok := s.Participants[s.ImpostorID]
	if !ok {
		return
	}
	points := impostorTieBase
	if isTie {
		points += impostorTieBonus
	}
	if impostor.HasGivenClue {
		points += impostorCluePoints
	}
	impostor.Points += points
}

// GuessPoints is the award for a correct impostor word guess: a flat bonus
// plus a tenth of the seconds still on the clock.
func GuessPoints(timeLeft int) int {
	bonus := timeLeft / impostorGuessTimeDiv
	if bonus < 0 {
		bonus = 0
	}
	return impostorGuessPoints + bonus
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, trims and removes diacritics, so "Café " matches
// "cafe".
func Normalize(word string) string {
	folded, _, err := transform.String(stripAccents, word)
	if err != nil {
		folded = word
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// CheckWordGuess reports whether a guess matches the secret word, ignoring
// case, surrounding whitespace and diacritics.
func CheckWordGuess(guess, actual string) bool {
	return Normalize(guess) == Normalize(actual)
}

// CheckGameEnd returns the overall winner once the round cap is reached, or
// "" while the game continues. Summed alive player points are compared
// against the impostor's; the impostor wins ties.
func CheckGameEnd(s *domain.Session) domain.Winner {
	if s.Round < s.MaxRounds {
		return ""
	}

	playerPoints := 0
	for _, p := range s.Participants {
		if p.Role == domain.RolePlayer && p.Status == domain.StatusAlive {
			playerPoints += p.Points
		}
	}

	impostorPoints := 0
	if impostor, ok := s.Participants[s.ImpostorID]; ok {
		impostorPoints = impostor.Points
	}

	if impostorPoints >= playerPoints {
		return domain.WinnerImpostor
	}
	return domain.WinnerPlayers
}
