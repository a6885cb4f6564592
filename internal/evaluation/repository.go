package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hyperjump/solace/internal/apperr"
	"github.com/hyperjump/solace/internal/models"
)

// Repository persists evaluation records.
type Repository interface {
	Create(ctx context.Context, rec *models.EvaluationRecord) error
	FindByID(ctx context.Context, id int64) (*models.EvaluationRecord, error)
	Update(ctx context.Context, rec *models.EvaluationRecord) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.EvaluationRecord, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

type gormRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// Migrate creates or updates the evaluation table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.EvaluationRecord{})
}

// NewRepository returns a gorm-backed Repository.
func NewRepository(db *gorm.DB, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gormRepository{db: db, log: logger.With(zap.String("repo", "EvaluationRepository"))}
}

func (r *gormRepository) Create(ctx context.Context, rec *models.EvaluationRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "evaluation.create", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id int64) (*models.EvaluationRecord, error) {
	var rec models.EvaluationRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "evaluation.find", fmt.Sprintf("evaluation %d not found", id))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "evaluation.find", err)
	}
	return &rec, nil
}

// Update overwrites the assessment columns of an existing record.
func (r *gormRepository) Update(ctx context.Context, rec *models.EvaluationRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.EvaluationRecord{}).
		Where("id = ?", rec.ID).
		Select(
			"emotion_state", "stress_level",
			"gad7_score", "gad7_assessment",
			"pss10_score", "pss10_assessment",
			"mbi_emotional_exhaustion", "mbi_cynicism", "mbi_professional_efficacy", "mbi_assessment",
			"overall_mental_health", "updated_at",
		).
		Updates(rec)
	if res.Error != nil {
		return apperr.Wrap(apperr.KindInternal, "evaluation.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "evaluation.update", fmt.Sprintf("evaluation %d not found", rec.ID))
	}
	return nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.EvaluationRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []*models.EvaluationRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "evaluation.list", err)
	}
	return out, nil
}

func (r *gormRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.EvaluationRecord{}).Where("user_id = ?", userID).Count(&n).Error
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "evaluation.count", err)
	}
	return n, nil
}
