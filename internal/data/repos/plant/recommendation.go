package plant

import (
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/pkg/dbctx"
	perr "github.com/yungbote/cementplant-backend/internal/pkg/errors"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

type RecommendationFilter struct {
	OpenOnly    bool
	MinPriority int
	MaxPriority int
	ProcessArea string
	Limit       int
	// NewestFirst orders by creation time only, ignoring priority.
	NewestFirst bool
}

type RecommendationRepo interface {
	Create(dbc dbctx.Context, recs []*types.Recommendation) ([]*types.Recommendation, error)
	List(dbc dbctx.Context, f RecommendationFilter) ([]*types.Recommendation, error)
	// LatestOpenByRule returns the newest unacknowledged row per rule name created
	// at or after since.
	LatestOpenByRule(dbc dbctx.Context, ruleNames []string, since time.Time) (map[string]*types.Recommendation, error)
	MarkActionTaken(dbc dbctx.Context, id int64, at time.Time) (*types.Recommendation, error)
	CountOpen(dbc dbctx.Context) (int64, error)
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return &recommendationRepo{
		db:  db,
		log: baseLog.With("repo", "RecommendationRepo"),
	}
}

func (r *recommendationRepo) Create(dbc dbctx.Context, recs []*types.Recommendation) ([]*types.Recommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(recs) == 0 {
		return []*types.Recommendation{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&recs).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return recs, nil
}

func (r *recommendationRepo) List(dbc dbctx.Context, f RecommendationFilter) ([]*types.Recommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Recommendation{})
	if f.OpenOnly {
		q = q.Where("action_taken = ?", false)
	}
	if f.MinPriority > 0 {
		q = q.Where("priority_level >= ?", f.MinPriority)
	}
	if f.MaxPriority > 0 {
		q = q.Where("priority_level <= ?", f.MaxPriority)
	}
	if f.ProcessArea != "" {
		q = q.Where("process_area = ?", f.ProcessArea)
	}
	if !f.NewestFirst {
		q = q.Order("priority_level DESC")
	}
	out := []*types.Recommendation{}
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(clampLimit(f.Limit)).
		Find(&out).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return out, nil
}

func (r *recommendationRepo) LatestOpenByRule(dbc dbctx.Context, ruleNames []string, since time.Time) (map[string]*types.Recommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := map[string]*types.Recommendation{}
	if len(ruleNames) == 0 {
		return out, nil
	}
	var rows []*types.Recommendation
	if err := transaction.WithContext(dbc.Ctx).
		Where("rule_name IN ?", ruleNames).
		Where("action_taken = ?", false).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	for _, row := range rows {
		if _, seen := out[row.RuleName]; !seen {
			out[row.RuleName] = row
		}
	}
	return out, nil
}

func (r *recommendationRepo) MarkActionTaken(dbc dbctx.Context, id int64, at time.Time) (*types.Recommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Recommendation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"action_taken":     true,
			"action_timestamp": at,
		})
	if res.Error != nil {
		return nil, wrapStoreErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, perr.ErrNotFound
	}
	var rec types.Recommendation
	if err := transaction.WithContext(dbc.Ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return &rec, nil
}

func (r *recommendationRepo) CountOpen(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Recommendation{}).
		Where("action_taken = ?", false).
		Count(&n).Error; err != nil {
		return 0, wrapStoreErr(err)
	}
	return n, nil
}
