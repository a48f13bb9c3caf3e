package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/guildroster/roster_backend/models"
	"gorm.io/gorm"
)

type teamReader struct {
	db *gorm.DB
}

func (r *teamReader) getTeams(ctx context.Context, ids []int) []*dataloader.Result[*models.Team] {
	var results []models.Team
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Team](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

func GetTeam(ctx context.Context, id int) (*models.Team, error) {
	loaders := For(ctx)
	return loaders.TeamLoader.Load(ctx, id)()
}
