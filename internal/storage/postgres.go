package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/hyperjump/solace/internal/apperr"
	"github.com/hyperjump/solace/internal/database"
	"github.com/hyperjump/solace/internal/models"
	"github.com/hyperjump/solace/internal/vector"
)

type fragmentRow struct {
	Seq            int64           `gorm:"column:seq;primaryKey;autoIncrement;index:idx_fragments_user_seq,priority:2"`
	ID             string          `gorm:"column:id;type:uuid;uniqueIndex;not null"`
	UserID         int64           `gorm:"column:user_id;not null;index:idx_fragments_user_seq,priority:1"`
	ConversationID string          `gorm:"column:conversation_id;not null;default:''"`
	Text           string          `gorm:"column:text;type:text;not null"`
	Embedding      pgvector.Vector `gorm:"column:embedding;type:vector;not null"`
	Dims           int             `gorm:"column:dims;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;not null"`
}

func (fragmentRow) TableName() string { return "fragments" }

// PostgresStore implements FragmentStore on Postgres with a pgvector column. Ranking is an
// exact scan using the cosine distance operator; no approximate index is created.
type PostgresStore struct {
	db     *gorm.DB
	ownsDB bool
}

// NewPostgresStore enables the vector extension and migrates the fragments table.
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable vector extension: %w", err)
	}
	if err := db.AutoMigrate(&fragmentRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate fragments: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Insert stores a fragment.
func (p *PostgresStore) Insert(ctx context.Context, userID int64, conversationID, text string, embedding []float32) (string, error) {
	if err := vector.Validate(embedding); err != nil {
		return "", err
	}
	row := &fragmentRow{
		ID:             uuid.New().String(),
		UserID:         userID,
		ConversationID: conversationID,
		Text:           text,
		Embedding:      pgvector.NewVector(embedding),
		Dims:           len(embedding),
		CreatedAt:      time.Now().UTC(),
	}
	if err := p.db.WithContext(ctx).Create(row).Error; err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "storage.insert", err)
	}
	return row.ID, nil
}

// TopK ranks the user's fragments of matching dimensionality against query.
// A zero-norm operand makes <=> return NaN, which is reported as similarity 0.
func (p *PostgresStore) TopK(ctx context.Context, userID int64, query []float32, k int) ([]*models.RetrievalResult, error) {
	if err := vector.Validate(query); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []*models.RetrievalResult{}, nil
	}
	var hits []struct {
		Seq            int64
		ID             string
		ConversationID string
		Text           string
		Similarity     float64
	}
	err := p.db.WithContext(ctx).Raw(`
		SELECT seq, id, conversation_id, text,
			CASE WHEN d = 'NaN'::float8 THEN 0 ELSE GREATEST(-1, LEAST(1, 1 - d)) END AS similarity
		FROM (
			SELECT seq, id, conversation_id, text, embedding <=> ? AS d
			FROM fragments WHERE user_id = ? AND dims = ?
		) scored
		ORDER BY similarity DESC, seq DESC
		LIMIT ?`,
		pgvector.NewVector(query), userID, len(query), k,
	).Scan(&hits).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage.topk", err)
	}
	out := make([]*models.RetrievalResult, len(hits))
	for i, h := range hits {
		out[i] = &models.RetrievalResult{
			FragmentID:     h.ID,
			ConversationID: h.ConversationID,
			Text:           h.Text,
			Similarity:     h.Similarity,
		}
	}
	return out, nil
}

// Recent returns the user's newest fragments.
func (p *PostgresStore) Recent(ctx context.Context, userID int64, k int) ([]*models.Fragment, error) {
	if k <= 0 {
		return []*models.Fragment{}, nil
	}
	var rows []fragmentRow
	err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("seq DESC").
		Limit(k).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage.recent", err)
	}
	out := make([]*models.Fragment, len(rows))
	for i, r := range rows {
		out[i] = &models.Fragment{
			ID:             r.ID,
			Seq:            r.Seq,
			UserID:         r.UserID,
			ConversationID: r.ConversationID,
			Text:           r.Text,
			Embedding:      r.Embedding.Slice(),
			CreatedAt:      r.CreatedAt,
		}
	}
	return out, nil
}

// Count returns the number of fragments for the user.
func (p *PostgresStore) Count(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := p.db.WithContext(ctx).Model(&fragmentRow{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "storage.count", err)
	}
	return n, nil
}

// Stats returns fragment and user totals.
func (p *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{Backend: string(BackendPostgres)}
	err := p.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) AS fragments, COUNT(DISTINCT user_id) AS users FROM fragments`).
		Row().Scan(&st.Fragments, &st.Users)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage.stats", err)
	}
	return st, nil
}

// Close closes the connection pool when the store opened it itself.
func (p *PostgresStore) Close() error {
	if !p.ownsDB {
		return nil
	}
	return database.Close(p.db)
}
