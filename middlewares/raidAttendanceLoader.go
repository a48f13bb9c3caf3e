package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/guildroster/roster_backend/models"
	"gorm.io/gorm"
)

type raidAttendanceReader struct {
	db *gorm.DB
}

func (r *raidAttendanceReader) getAttendances(ctx context.Context, raidIds []int) []*dataloader.Result[[]*models.Attendance] {
	var results []models.Attendance
	err := r.db.WithContext(ctx).Where("raid_id IN ?", raidIds).Order("raid_id, id").Find(&results).Error
	if err != nil {
		return handleError[[]*models.Attendance](len(raidIds), err)
	}
	return generateLoaderArrayResults(results, raidIds)
}

func GetRaidAttendances(ctx context.Context, raidId int) ([]*models.Attendance, error) {
	loaders := For(ctx)
	return loaders.RaidAttendanceLoader.Load(ctx, raidId)()
}

func GetRaidsAttendances(ctx context.Context, raidIds []int) ([][]*models.Attendance, []error) {
	loaders := For(ctx)
	return loaders.RaidAttendanceLoader.LoadMany(ctx, raidIds)()
}
