package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nmoreno/impostor-server/internal/domain"
	"github.com/nmoreno/impostor-server/internal/store"
)

// StatsService records finished games and serves the aggregate queries.
type StatsService struct {
	results store.ResultStore
	logger  *zap.Logger
}

func NewStatsService(results store.ResultStore, logger *zap.Logger) *StatsService {
	return &StatsService{results: results, logger: logger}
}

// RecordGame persists the outcome of a finished game, keyed by the session ID
// so a re-send updates in place instead of duplicating.
func (s *StatsService) RecordGame(ctx context.Context, session *domain.Session, winner domain.Winner) error {
	impostorName := ""
	impostorPoints := 0
	playerPoints := 0
	for _, p := range session.Participants {
		if p.ID == session.ImpostorID {
			impostorName = p.Name
			impostorPoints = p.Points
		} else {
			playerPoints += p.Points
		}
	}

	now := time.Now().UnixMilli()
	result := &domain.GameResult{
		GameID:         session.ID,
		Code:           session.Code,
		Winner:         winner,
		Round:          session.Round,
		MaxRounds:      session.MaxRounds,
		ImpostorID:     session.ImpostorID,
		ImpostorName:   impostorName,
		PlayerCount:    len(session.Participants),
		CreatedAt:      session.CreatedAt,
		EndedAt:        now,
		Duration:       int((now - session.CreatedAt) / 1000),
		ImpostorPoints: impostorPoints,
		PlayerPoints:   playerPoints,
		CluesGiven:     len(session.Clues),
		VotesCast:      len(session.Votes),
	}

	if err := s.results.Upsert(ctx, result); err != nil {
		return err
	}
	s.logger.Info("game recorded",
		zap.String("code", session.Code),
		zap.String("winner", string(winner)))
	return nil
}

func (s *StatsService) Query(ctx context.Context, q domain.GameStatsQuery) ([]*domain.GameResult, error) {
	return s.results.Query(ctx, q)
}

func (s *StatsService) ImpostorWins(ctx context.Context, limit int) ([]*domain.GameResult, error) {
	winner := domain.WinnerImpostor
	return s.results.Query(ctx, domain.GameStatsQuery{Winner: &winner, Limit: limit})
}

func (s *StatsService) PlayersWins(ctx context.Context, limit int) ([]*domain.GameResult, error) {
	winner := domain.WinnerPlayers
	return s.results.Query(ctx, domain.GameStatsQuery{Winner: &winner, Limit: limit})
}

// GeneralStats aggregates over the full history.
func (s *StatsService) GeneralStats(ctx context.Context) (*domain.GeneralStats, error) {
	all, err := s.results.Query(ctx, domain.GameStatsQuery{Limit: -1})
	if err != nil {
		return nil, err
	}

	stats := &domain.GeneralStats{TotalGames: len(all)}
	if len(all) == 0 {
		return stats, nil
	}

	var duration, players, rounds int
	for _, r := range all {
		switch r.Winner {
		case domain.WinnerImpostor:
			stats.ImpostorWins++
		case domain.WinnerPlayers:
			stats.PlayersWins++
		}
		duration += r.Duration
		players += r.PlayerCount
		rounds += r.Round
	}
	n := float64(len(all))
	stats.AverageDuration = float64(duration) / n
	stats.AveragePlayers = float64(players) / n
	stats.AverageRounds = float64(rounds) / n
	return stats, nil
}

// ImpostorStats aggregates games where the given participant was the impostor.
func (s *StatsService) ImpostorStats(ctx context.Context, impostorID string) (*domain.ImpostorStats, error) {
	games, err := s.results.Query(ctx, domain.GameStatsQuery{ImpostorID: impostorID, Limit: -1})
	if err != nil {
		return nil, err
	}

	stats := &domain.ImpostorStats{TotalGames: len(games), Games: games}
	if len(games) == 0 {
		return stats, nil
	}

	points := 0
	for _, g := range games {
		if g.Winner == domain.WinnerImpostor {
			stats.Wins++
		} else {
			stats.Losses++
		}
		points += g.ImpostorPoints
	}
	stats.WinRate = float64(stats.Wins) / float64(len(games))
	stats.AveragePoints = float64(points) / float64(len(games))
	return stats, nil
}
