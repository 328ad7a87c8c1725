package plant

import (
	"gorm.io/gorm"

	types "github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/pkg/dbctx"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

// ReadingRepo reads the sensor and lab tables newest-first. A limit below 1 is
// treated as 1. Empty tables return an empty slice, never nil.
type ReadingRepo interface {
	RecentRawMaterial(dbc dbctx.Context, limit int) ([]*types.RawMaterialFeed, error)
	RecentGrinding(dbc dbctx.Context, limit int) ([]*types.GrindingOperation, error)
	RecentKiln(dbc dbctx.Context, limit int) ([]*types.KilnOperation, error)
	RecentUtilities(dbc dbctx.Context, limit int) ([]*types.UtilitiesMonitoring, error)
	RecentQuality(dbc dbctx.Context, limit int) ([]*types.QualityControl, error)
	RecentAlternativeFuels(dbc dbctx.Context, limit int) ([]*types.AlternativeFuel, error)
}

type readingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReadingRepo(db *gorm.DB, baseLog *logger.Logger) ReadingRepo {
	return &readingRepo{
		db:  db,
		log: baseLog.With("repo", "ReadingRepo"),
	}
}

func (r *readingRepo) RecentRawMaterial(dbc dbctx.Context, limit int) ([]*types.RawMaterialFeed, error) {
	return recent[types.RawMaterialFeed](r.db, dbc, limit)
}

func (r *readingRepo) RecentGrinding(dbc dbctx.Context, limit int) ([]*types.GrindingOperation, error) {
	return recent[types.GrindingOperation](r.db, dbc, limit)
}

func (r *readingRepo) RecentKiln(dbc dbctx.Context, limit int) ([]*types.KilnOperation, error) {
	return recent[types.KilnOperation](r.db, dbc, limit)
}

func (r *readingRepo) RecentUtilities(dbc dbctx.Context, limit int) ([]*types.UtilitiesMonitoring, error) {
	return recent[types.UtilitiesMonitoring](r.db, dbc, limit)
}

func (r *readingRepo) RecentQuality(dbc dbctx.Context, limit int) ([]*types.QualityControl, error) {
	return recent[types.QualityControl](r.db, dbc, limit)
}

func (r *readingRepo) RecentAlternativeFuels(dbc dbctx.Context, limit int) ([]*types.AlternativeFuel, error) {
	return recent[types.AlternativeFuel](r.db, dbc, limit)
}

// MaxLimit caps every list query.
const MaxLimit = 500

func recent[T any](db *gorm.DB, dbc dbctx.Context, limit int) ([]*T, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = db
	}
	limit = clampLimit(limit)
	out := []*T{}
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return out, nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
