package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/guildroster/roster_backend/models"
	"gorm.io/gorm"
)

type characterReader struct {
	db *gorm.DB
}

func (r *characterReader) getCharacters(ctx context.Context, ids []int) []*dataloader.Result[*models.Character] {
	var results []models.Character
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Character](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

func GetCharacter(ctx context.Context, id int) (*models.Character, error) {
	loaders := For(ctx)
	return loaders.CharacterLoader.Load(ctx, id)()
}

func GetCharacters(ctx context.Context, ids []int) ([]*models.Character, []error) {
	loaders := For(ctx)
	return loaders.CharacterLoader.LoadMany(ctx, ids)()
}
