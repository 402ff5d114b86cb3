package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/platform/logger"
)

type EvaluationRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *domain.EvaluationRun) error
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*domain.EvaluationRun, error)
}

type evaluationRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvaluationRunRepo(db *gorm.DB, baseLog *logger.Logger) EvaluationRunRepo {
	return &evaluationRunRepo{db: db, log: baseLog.With("repo", "EvaluationRunRepo")}
}

func (r *evaluationRunRepo) Create(ctx context.Context, tx *gorm.DB, run *domain.EvaluationRun) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(run).Error
}

func (r *evaluationRunRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*domain.EvaluationRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	var runs []*domain.EvaluationRun
	err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
