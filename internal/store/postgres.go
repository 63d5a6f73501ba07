package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/nmoreno/impostor-server/internal/domain"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&domain.SessionSnapshot{}, &domain.GameResult{}); err != nil {
		return nil, err
	}
	return db, nil
}

// SnapshotStore is the durable SessionStore: the whole session serialized
// into one JSON blob per code.
type SnapshotStore struct {
	db *gorm.DB
}

func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) Get(ctx context.Context, code string) (*domain.Session, error) {
	var snapshot domain.SessionSnapshot
	err := s.db.WithContext(ctx).First(&snapshot, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(snapshot.State, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SnapshotStore) Put(ctx context.Context, session *domain.Session) error {
	state, err := json.Marshal(session)
	if err != nil {
		return err
	}
	snapshot := domain.SessionSnapshot{
		Code:      session.Code,
		State:     state,
		UpdatedAt: time.Now().UnixMilli(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&snapshot).Error
}

func (s *SnapshotStore) Delete(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Delete(&domain.SessionSnapshot{}, "code = ?", code).Error
}

// ResultRepository is the gorm-backed ResultStore.
type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) Upsert(ctx context.Context, result *domain.GameResult) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"code", "winner", "round", "max_rounds", "impostor_id", "impostor_name",
			"player_count", "created_at", "ended_at", "duration",
			"impostor_points", "player_points", "clues_given", "votes_cast",
		}),
	}).Create(result).Error
}

func (r *ResultRepository) Query(ctx context.Context, q domain.GameStatsQuery) ([]*domain.GameResult, error) {
	tx := r.db.WithContext(ctx).Model(&domain.GameResult{})

	if q.Winner != nil {
		tx = tx.Where("winner = ?", *q.Winner)
	}
	if q.MinRounds != nil {
		tx = tx.Where("round >= ?", *q.MinRounds)
	}
	if q.MaxRounds != nil {
		tx = tx.Where("round <= ?", *q.MaxRounds)
	}
	if q.MinPlayers != nil {
		tx = tx.Where("player_count >= ?", *q.MinPlayers)
	}
	if q.MaxPlayers != nil {
		tx = tx.Where("player_count <= ?", *q.MaxPlayers)
	}
	if q.StartDate != nil {
		tx = tx.Where("created_at >= ?", *q.StartDate)
	}
	if q.EndDate != nil {
		tx = tx.Where("created_at <= ?", *q.EndDate)
	}
	if q.ImpostorID != "" {
		tx = tx.Where("impostor_id = ?", q.ImpostorID)
	}

	// Zero means the default page; negative means unbounded.
	limit := q.Limit
	if limit == 0 {
		limit = 100
	}

	var results []*domain.GameResult
	err := tx.Order("ended_at DESC").
		Limit(limit).
		Offset(q.Offset).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
