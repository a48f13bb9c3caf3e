package models

import (
	"context"
	"errors"
	"strings"

	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/utils"
	"gorm.io/gorm"
)

type Resource interface {
	GetGuildId() string
}

// ListFilter carries the query parameters shared by every list endpoint.
type ListFilter struct {
	Name     *string
	IsActive *bool
	Sort     string
}

var defaultSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

func (f ListFilter) apply(dbCtx *gorm.DB, sortColumns map[string]string) *gorm.DB {
	if f.Name != nil && len(strings.TrimSpace(*f.Name)) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+strings.TrimSpace(*f.Name)+"%")
	}
	if f.IsActive != nil {
		dbCtx = dbCtx.Where("is_active = ?", *f.IsActive)
	}
	if sortColumns == nil {
		sortColumns = defaultSortColumns
	}
	return dbCtx.Order(utils.SortClause(f.Sort, sortColumns, "name ASC"))
}

// fetch a guild-owned resource by id, using ctx's guild_id in WHERE
// (may return RecordNotFound error)
func GetResource[T Resource](ctx context.Context, id int, associations ...string) (*T, error) {
	guildId, ok := utils.GetGuildIdFromContext(ctx)
	if !ok || guildId == "" {
		return nil, errors.New("guild id is required")
	}
	return utils.FetchModel[T](ctx, guildId, id, associations...)
}

// list id/name pairs, redis or db, cache result
func ListAllResource[ModelT any, AllModelT any](ctx context.Context, orders ...string) ([]*AllModelT, error) {

	guildId, ok := utils.GetGuildIdFromContext(ctx)
	if !ok || guildId == "" {
		return nil, errors.New("guild id is required")
	}

	// first try redis cache
	results, err := utils.RetrieveRedisList[AllModelT](guildId)
	if err != nil {
		return nil, err
	}
	// if not exists in redis
	if results == nil {
		db := config.GetDB()
		var model ModelT
		dbCtx := db.WithContext(ctx).Model(&model).Where("guild_id = ? AND is_active = ?", guildId, true)
		for _, order := range orders {
			dbCtx = dbCtx.Order(order)
		}
		if err = dbCtx.Find(&results).Error; err != nil {
			return nil, err
		}

		// caching the result
		if err := utils.StoreRedisList[AllModelT](results, guildId); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func ToggleActiveModel[T any](ctx context.Context, guildId string, id int, isActive bool) (*T, error) {
	result, err := utils.FetchModel[T](ctx, guildId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(result).UpdateColumn("IsActive", isActive).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func guildIdOrError(ctx context.Context) (string, error) {
	guildId, ok := utils.GetGuildIdFromContext(ctx)
	if !ok || guildId == "" {
		return "", errors.New("guild id is required")
	}
	return guildId, nil
}
