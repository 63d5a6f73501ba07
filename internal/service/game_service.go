package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
	"github.com/nmoreno/impostor-server/internal/game"
	"github.com/nmoreno/impostor-server/internal/store"
	"github.com/nmoreno/impostor-server/internal/words"
)

// minPlayersToStart is the floor below which clue-and-vote rounds degenerate.
const minPlayersToStart = 3

// WordSource supplies the secret word for a round.
type WordSource interface {
	RandomWord(ctx context.Context, category string) words.Word
}

// GameService drives the round state machine: starting games, collecting
// clues and votes, resolving rounds and ending games. Every mutation is
// persisted and then broadcast to the room.
type GameService struct {
	sessions    store.SessionStore
	stats       *StatsService
	words       WordSource
	timers      *TimerService
	broadcaster Broadcaster
	logger      *zap.Logger

	// voteDelay holds the results back briefly once the last vote lands, so
	// clients see the final tally before the reveal.
	voteDelay time.Duration
}

func NewGameService(sessions store.SessionStore, stats *StatsService, source WordSource, timers *TimerService, logger *zap.Logger) *GameService {
	g := &GameService{
		sessions:    sessions,
		stats:       stats,
		words:       source,
		timers:      timers,
		broadcaster: NopBroadcaster{},
		logger:      logger,
		voteDelay:   time.Second,
	}
	timers.SetExpireHandler(g.handlePhaseTimeout)
	return g
}

func (g *GameService) SetBroadcaster(b Broadcaster) { g.broadcaster = b }

// Start begins the first round. Host only, lobby only, and at least three
// participants.
func (g *GameService) Start(ctx context.Context, code, playerID string) error {
	session, err := g.sessions.Get(ctx, code)
	if err != nil {
		return err
	}
	if session.HostID != playerID {
		return domain.ErrNotHost
	}
	if session.Phase != domain.PhaseLobby {
		return domain.ErrGameInProgress
	}
	if len(session.Participants) < minPlayersToStart {
		return domain.ErrNotEnoughPlayers
	}

	w := g.words.RandomWord(ctx, "")
	if err := game.StartRound(session, w.Word, w.Category); err != nil {
		return err
	}
	if err := g.sessions.Put(ctx, session); err != nil {
		return err
	}

	g.logger.Info("game started",
		zap.String("code", code),
		zap.Int("players", len(session.Participants)))

	g.broadcaster.BroadcastSession(code, session)
	g.broadcaster.BroadcastEvent(code, "action", domain.GameStartedAction{Type: domain.ActionGameStarted})
	g.timers.Start(code)
	return nil
}

// SubmitClue records an alive participant's clue during the clue phase. When
// the last clue lands the session moves straight to discussion.
func (g *GameService) SubmitClue(ctx context.Context, code, playerID, clue string) error {
	session, err := g.sessions.Get(ctx, code)
	if err != nil {
		return err
	}
	if session.Phase != domain.PhaseClues {
		return domain.ErrInvalidPhase
	}
	p, ok := session.Participants[playerID]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	if p.Status != domain.StatusAlive {
		return domain.ErrNotAlive
	}
	if p.HasGivenClue {
		return domain.ErrAlreadyGaveClue
	}

	p.Clue = clue
	p.HasGivenClue = true
	session.Clues[playerID] = clue

	phaseChanged := false
	if session.AllAliveGaveClue() {
		session.Phase = domain.PhaseDiscussion
		session.TimeLeft = session.DiscussionTime
		phaseChanged = true
	}

	if err := g.sessions.Put(ctx, session); err != nil {
		return err
	}

	g.broadcaster.BroadcastSession(code, session)
	g.broadcaster.BroadcastEvent(code, "action", domain.ClueSubmittedAction{
		Type:     domain.ActionClueSubmitted,
		PlayerID: playerID,
		Clue:     clue,
	})
	if phaseChanged {
		g.broadcaster.BroadcastEvent(code, "action", domain.PhaseChangedAction{
			Type:  domain.ActionPhaseChanged,
			Phase: session.Phase,
		})
	}
	return nil
}

// CastVote records a vote during the voting phase. The target is another
// participant or the skip bucket. Once every alive participant has voted the
// round resolves after a short delay.
func (g *GameService) CastVote(ctx context.Context, code, playerID, votedFor string) error {
	session, err := g.sessions.Get(ctx, code)
	if err != nil {
		return err
	}
	if session.Phase != domain.PhaseVoting {
		return domain.ErrInvalidPhase
	}
	p, ok := session.Participants[playerID]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	if p.Status != domain.StatusAlive {
		return domain.ErrNotAlive
	}
	if p.HasVoted {
		return domain.ErrAlreadyVoted
	}
	if votedFor != domain.VoteSkip {
		if _, ok := session.Participants[votedFor]; !ok {
			return domain.ErrParticipantNotFound
		}
	}

	p.HasVoted = true
	session.Votes[playerID] = votedFor

	allVoted := session.AllAliveVoted()
	if err := g.sessions.Put(ctx, session); err != nil {
		return err
	}

	g.broadcaster.BroadcastSession(code, session)
	g.broadcaster.BroadcastEvent(code, "action", domain.VoteCastAction{
		Type:     domain.ActionVoteCast,
		PlayerID: playerID,
		VotedFor: votedFor,
	})

	if allVoted {
		time.AfterFunc(g.voteDelay, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := g.FinishVoting(ctx, code); err != nil {
				g.logger.Warn("vote resolution failed", zap.String("code", code), zap.Error(err))
			}
		})
	}
	return nil
}

// FinishVoting resolves the voting phase from fresh state: tallies, ejection,
// scoring, and the round's winner. The game itself only concludes when the
// round cap check fires, in which case a game-ended event follows the
// round-ended one. A session no longer in voting is left alone, so the
// timeout path and the everyone-voted path never resolve the same round
// twice.
func (g *GameService) FinishVoting(ctx context.Context, code string) error {
	session, err := g.sessions.Get(ctx, code)
	if err != nil {
		return err
	}
	if session.Phase != domain.PhaseVoting {
		return nil
	}
	g.timers.Stop(code)

	res := game.ProcessVotes(session)
	if res.EjectedID != "" {
		if ejected, ok := session.Participants[res.EjectedID]; ok {
			ejected.Status = domain.StatusEliminated
		}
	}
	session.Phase = domain.PhaseResults
	session.TimeLeft = 0
	session.Winner = res.Winner

	gameWinner := game.CheckGameEnd(session)
	if gameWinner != "" {
		session.Winner = gameWinner
	}

	if err := g.sessions.Put(ctx, session); err != nil {
		return err
	}

	g.logger.Info("round resolved",
		zap.String("code", code),
		zap.Int("round", session.Round),
		zap.String("roundWinner", string(res.Winner)),
		zap.String("ejected", res.EjectedID),
		zap.Bool("tie", res.IsTie))

	g.broadcaster.BroadcastSession(code, session)
	g.broadcaster.BroadcastEvent(code, "action", domain.RoundEndedAction{
		Type:   domain.ActionRoundEnded,
		Winner: res.Winner,
	})
	if gameWinner != "" {
		g.broadcaster.BroadcastEvent(code, "action", domain.GameEndedAction{
			Type:   domain.ActionGameEnded,
			Winner: gameWinner,
		})
		if err := g.stats.RecordGame(ctx, session, gameWinner); err != nil {
			g.logger.Warn("failed to record game", zap.String("code", code), zap.Error(err))
		}
	}
	return nil
}

// GuessWord lets the impostor gamble on naming the secret word during any
// timed phase. A correct guess ends the round immediately in the impostor's
// favor with a time-scaled bonus, and the host can still start the next
// round; a wrong one only announces itself.
func (g *GameService) GuessWord(ctx context.Context, code, playerID, guess string) error {
	session, err := g.sessions.Get(ctx, code)
	if err != nil {
		return err
	}
	if !session.Phase.Active() {
		return domain.ErrInvalidPhase
	}
	p, ok := session.Participants[playerID]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	if p.Role != domain.RoleImpostor {
		return domain.ErrNotImpostor
	}
	if session.CurrentWord == "" {
		return domain.ErrNoWordSet
	}

	correct := game.CheckWordGuess(guess, session.CurrentWord)
	if !correct {
		g.broadcaster.BroadcastEvent(code, "action", domain.WordGuessedAction{
			Type:        domain.ActionWordGuessed,
			PlayerID:    playerID,
			GuessedWord: guess,
			Correct:     false,
		})
		return nil
	}

	g.timers.Stop(code)
	p.Points += game.GuessPoints(session.TimeLeft)
	session.Winner = domain.WinnerImpostor
	session.Phase = domain.PhaseResults
	session.TimeLeft = 0

	gameWinner := game.CheckGameEnd(session)
	if gameWinner != "" {
		session.Winner = gameWinner
	}

	if err := g.sessions.Put(ctx, session); err != nil {
		return err
	}

	g.logger.Info("impostor guessed the word",
		zap.String("code", code),
		zap.String("playerId", playerID))

	g.broadcaster.BroadcastSession(code, session)
	g.broadcaster.BroadcastEvent(code, "action", domain.WordGuessedAction{
		Type:        domain.ActionWordGuessed,
		PlayerID:    playerID,
		GuessedWord: guess,
		Correct:     true,
	})
	g.broadcaster.BroadcastEvent(code, "action", domain.RoundEndedAction{
		Type:   domain.ActionRoundEnded,
		Winner: domain.WinnerImpostor,
	})
	if gameWinner != "" {
		g.broadcaster.BroadcastEvent(code, "action", domain.GameEndedAction{
			Type:   domain.ActionGameEnded,
			Winner: gameWinner,
		})
		if err := g.stats.RecordGame(ctx, session, gameWinner); err != nil {
			g.logger.Warn("failed to record game", zap.String("code", code), zap.Error(err))
		}
	}
	return nil
}

// NextRound advances from the results phase. Host only. When the round cap
// check concludes the game it finalizes with that winner instead of starting
// another round.
func (g *GameService) NextRound(ctx context.Context, code, playerID string) error {
	session, err := g.sessions.Get(ctx, code)
	if err != nil {
		return err
	}
	if session.HostID != playerID {
		return domain.ErrNotHost
	}
	if session.Phase != domain.PhaseResults {
		return domain.ErrInvalidPhase
	}

	if winner := game.CheckGameEnd(session); winner != "" {
		session.Winner = winner
		if err := g.sessions.Put(ctx, session); err != nil {
			return err
		}
		g.broadcaster.BroadcastSession(code, session)
		g.broadcaster.BroadcastEvent(code, "action", domain.GameEndedAction{
			Type:   domain.ActionGameEnded,
			Winner: winner,
		})
		if err := g.stats.RecordGame(ctx, session, winner); err != nil {
			g.logger.Warn("failed to record game", zap.String("code", code), zap.Error(err))
		}
		return nil
	}

	w := g.words.RandomWord(ctx, "")
	if err := game.StartRound(session, w.Word, w.Category); err != nil {
		return err
	}
	if err := g.sessions.Put(ctx, session); err != nil {
		return err
	}

	g.broadcaster.BroadcastSession(code, session)
	g.broadcaster.BroadcastEvent(code, "action", domain.NextRoundAction{Type: domain.ActionNextRound})
	g.timers.Start(code)
	return nil
}

// UpdateSettings applies a host settings change in the lobby. Out-of-bounds
// values are clamped, and the clamped result is what everyone sees.
func (g *GameService) UpdateSettings(ctx context.Context, code, playerID string, update domain.SettingsUpdate) error {
	session, err := g.sessions.Get(ctx, code)
	if err != nil {
		return err
	}
	if session.HostID != playerID {
		return domain.ErrNotHost
	}
	if session.Phase != domain.PhaseLobby {
		return domain.ErrInvalidPhase
	}

	session.ApplySettings(update)
	if err := g.sessions.Put(ctx, session); err != nil {
		return err
	}

	// Everyone receives the clamped values, not the raw request.
	applied := domain.SettingsUpdate{
		MaxRounds:      session.MaxRounds,
		CluesTime:      session.CluesTime,
		DiscussionTime: session.DiscussionTime,
		VotingTime:     session.VotingTime,
		ChangeImpostor: &session.ChangeImpostor,
	}

	g.broadcaster.BroadcastSession(code, session)
	g.broadcaster.BroadcastEvent(code, "action", domain.SettingsUpdatedAction{
		Type:           domain.ActionSettingsUpdated,
		SettingsUpdate: applied,
	})
	return nil
}

// handlePhaseTimeout moves the session forward when a countdown runs out.
// Returns true while the countdown should keep running for the next phase.
func (g *GameService) handlePhaseTimeout(ctx context.Context, code string) bool {
	session, err := g.sessions.Get(ctx, code)
	if err != nil {
		return false
	}

	switch session.Phase {
	case domain.PhaseClues:
		session.Phase = domain.PhaseDiscussion
		session.TimeLeft = session.DiscussionTime
	case domain.PhaseDiscussion:
		session.Phase = domain.PhaseVoting
		session.TimeLeft = session.VotingTime
	case domain.PhaseVoting:
		if err := g.FinishVoting(ctx, code); err != nil {
			g.logger.Warn("vote resolution failed", zap.String("code", code), zap.Error(err))
		}
		return false
	default:
		return false
	}

	if err := g.sessions.Put(ctx, session); err != nil {
		g.logger.Warn("failed to persist phase change", zap.String("code", code), zap.Error(err))
		return false
	}

	g.broadcaster.BroadcastSession(code, session)
	g.broadcaster.BroadcastEvent(code, "action", domain.PhaseChangedAction{
		Type:  domain.ActionPhaseChanged,
		Phase: session.Phase,
	})
	return true
}
