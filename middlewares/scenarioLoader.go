package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/guildroster/roster_backend/models"
	"gorm.io/gorm"
)

type scenarioReader struct {
	db *gorm.DB
}

func (r *scenarioReader) getScenarios(ctx context.Context, ids []int) []*dataloader.Result[*models.Scenario] {
	var results []models.Scenario
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Scenario](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

func GetScenario(ctx context.Context, id int) (*models.Scenario, error) {
	loaders := For(ctx)
	return loaders.ScenarioLoader.Load(ctx, id)()
}
