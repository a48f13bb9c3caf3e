package utils

import (
	"context"
	"errors"
	"reflect"

	"github.com/guildroster/roster_backend/config"
)

// check if id exists, using guild_id in WHERE, return RecordNotFound Error
func ValidateResourceId[T any](ctx context.Context, guildId string, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, guildId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// check if ALL ids exist, using guild_id in WHERE, return RecordNotFound Error
func ValidateResourcesId[M any, ID comparable](ctx context.Context, guildId string, ids []ID) error {
	unqIds := UniqueSlice(ids)
	if len(unqIds) == 0 {
		return nil
	}

	count, err := ResourceCountWhere[M](ctx, guildId, "id IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, guildId string, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, guildId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, guildId, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate " + column)
	}
	return nil
}

// count records, using WHERE guild_id = ? AND $condition
// guild_id can be blank for admin user
func ResourceCountWhere[T any](ctx context.Context, guildId string, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	if guildId != "" {
		dbCtx = dbCtx.Where("guild_id = ?", guildId)
	}
	dbCtx = dbCtx.Where(condition, value...)
	var count int64
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
