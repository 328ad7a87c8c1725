package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/cementplant-backend/internal/data/repos/plant"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

type ReadingRepo = plant.ReadingRepo
type RecommendationRepo = plant.RecommendationRepo
type OptimizationRepo = plant.OptimizationRepo

type RecommendationFilter = plant.RecommendationFilter

type Set struct {
	Readings        ReadingRepo
	Recommendations RecommendationRepo
	Optimizations   OptimizationRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Readings:        plant.NewReadingRepo(db, log),
		Recommendations: plant.NewRecommendationRepo(db, log),
		Optimizations:   plant.NewOptimizationRepo(db, log),
	}
}
