package plant

import (
	"gorm.io/gorm"

	types "github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/pkg/dbctx"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

type OptimizationRepo interface {
	Create(dbc dbctx.Context, row *types.OptimizationSummary) (*types.OptimizationSummary, error)
	// Latest returns nil without error when nothing has been persisted yet.
	Latest(dbc dbctx.Context) (*types.OptimizationSummary, error)
	Recent(dbc dbctx.Context, limit int) ([]*types.OptimizationSummary, error)
}

type optimizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOptimizationRepo(db *gorm.DB, baseLog *logger.Logger) OptimizationRepo {
	return &optimizationRepo{
		db:  db,
		log: baseLog.With("repo", "OptimizationRepo"),
	}
}

func (r *optimizationRepo) Create(dbc dbctx.Context, row *types.OptimizationSummary) (*types.OptimizationSummary, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return row, nil
}

func (r *optimizationRepo) Latest(dbc dbctx.Context) (*types.OptimizationSummary, error) {
	rows, err := r.Recent(dbc, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *optimizationRepo) Recent(dbc dbctx.Context, limit int) ([]*types.OptimizationSummary, error) {
	return recent[types.OptimizationSummary](r.db, dbc, limit)
}
