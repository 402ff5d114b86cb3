package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/platform/logger"
)

type PackVerdictRepo interface {
	CreateMany(ctx context.Context, tx *gorm.DB, rows []*domain.PackVerdictRow) ([]*domain.PackVerdictRow, error)
	ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*domain.PackVerdictRow, error)
}

type packVerdictRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPackVerdictRepo(db *gorm.DB, baseLog *logger.Logger) PackVerdictRepo {
	return &packVerdictRepo{db: db, log: baseLog.With("repo", "PackVerdictRepo")}
}

func (r *packVerdictRepo) CreateMany(ctx context.Context, tx *gorm.DB, rows []*domain.PackVerdictRow) ([]*domain.PackVerdictRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*domain.PackVerdictRow{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *packVerdictRepo) ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*domain.PackVerdictRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*domain.PackVerdictRow
	err := transaction.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("pack_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
