package utils

import (
	"context"
	"errors"

	"github.com/guildroster/roster_backend/config"
	"gorm.io/gorm"
)

/* DB fetching */

// fetch model from db
// (guild_id is used in query's WHERE, may return RecordNotFound)
func FetchModel[T any](ctx context.Context, guildId string, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("guild_id = ?", guildId)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch all models of the guild from db
func FetchAllModels[T any](ctx context.Context, guildId string, associations ...string) ([]*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("guild_id = ?", guildId)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
