package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/utils"
	"gorm.io/gorm"
)

// Raid is one scheduled raid night of a team.
type Raid struct {
	ID          int           `gorm:"primary_key" json:"id"`
	GuildId     string        `gorm:"type:char(36);index;not null" json:"guild_id"`
	TeamId      int           `gorm:"index;not null" json:"team_id"`
	ScenarioId  int           `gorm:"index;not null" json:"scenario_id"`
	ScheduledAt time.Time     `gorm:"index;not null" json:"scheduled_at"`
	Title       string        `gorm:"size:255" json:"title"`
	ZoneName    string        `gorm:"size:100" json:"zone_name"`
	ReportCode  string        `gorm:"size:40;index" json:"report_code"`
	ReportOwner string        `gorm:"size:100" json:"report_owner"`
	StartedAt   *time.Time    `json:"started_at"`
	EndedAt     *time.Time    `json:"ended_at"`
	Note        string        `gorm:"type:text" json:"note"`
	Attendances []*Attendance `json:"attendances,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRaid struct {
	TeamId           int             `json:"team_id" binding:"required"`
	ScenarioId       int             `json:"scenario_id"`
	ScenarioSelector string          `json:"scenario_selector"`
	ScheduledAt      time.Time       `json:"scheduled_at" binding:"required"`
	Title            string          `json:"title"`
	ZoneName         string          `json:"zone_name"`
	ReportCode       string          `json:"report_code"`
	ReportOwner      string          `json:"report_owner"`
	StartedAt        *time.Time      `json:"started_at"`
	EndedAt          *time.Time      `json:"ended_at"`
	Note             string          `json:"note"`
	Attendances      []NewAttendance `json:"attendances"`
}

type RaidFilter struct {
	TeamId     *int
	ScenarioId *int
	From       *time.Time
	To         *time.Time
	Sort       string
}

var raidSortColumns = map[string]string{
	"scheduled_at": "scheduled_at",
	"created_at":   "created_at",
	"title":        "title",
}

func (r Raid) GetGuildId() string {
	return r.GuildId
}

var ErrDuplicateRaid = errors.New("raid already exists for this team and time")

// validate checks everything that can be rejected before writing.
// ScenarioId is filled from the selector when it is not given.
func (input *NewRaid) validate(ctx context.Context, guildId string, id int) error {
	if input.ScheduledAt.IsZero() {
		return errors.New("scheduled_at is required")
	}
	if input.StartedAt != nil && input.EndedAt != nil && input.EndedAt.Before(*input.StartedAt) {
		return errors.New("ended_at is before started_at")
	}
	if err := utils.ValidateResourceId[Team](ctx, guildId, input.TeamId); err != nil {
		return errors.New("team not found")
	}
	if input.ScenarioId == 0 {
		scenario, err := FindScenarioBySelector(ctx, guildId, input.ScenarioSelector)
		if err != nil {
			return err
		}
		input.ScenarioId = scenario.ID
	} else if err := utils.ValidateResourceId[Scenario](ctx, guildId, input.ScenarioId); err != nil {
		return errors.New("scenario not found")
	}

	count, err := utils.ResourceCountWhere[Raid](ctx, guildId, "team_id = ? AND scheduled_at = ? AND NOT id = ?", input.TeamId, input.ScheduledAt, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateRaid
	}

	normalized, err := normalizeAttendances(input.Attendances)
	if err != nil {
		return err
	}
	input.Attendances = normalized
	characterIds := make([]int, 0, len(normalized))
	for _, a := range normalized {
		characterIds = append(characterIds, a.CharacterId)
	}
	if err := utils.ValidateResourcesId[Character](ctx, guildId, characterIds); err != nil {
		return errors.New("character not found")
	}
	return nil
}

// CreateRaidWithAttendance writes the raid and all of its attendance rows
// in one transaction. Either everything is stored or nothing is.
func CreateRaidWithAttendance(ctx context.Context, input *NewRaid) (*Raid, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, guildId, 0); err != nil {
		return nil, err
	}

	raid := Raid{
		GuildId:     guildId,
		TeamId:      input.TeamId,
		ScenarioId:  input.ScenarioId,
		ScheduledAt: input.ScheduledAt.UTC(),
		Title:       strings.TrimSpace(input.Title),
		ZoneName:    input.ZoneName,
		ReportCode:  input.ReportCode,
		ReportOwner: input.ReportOwner,
		StartedAt:   input.StartedAt,
		EndedAt:     input.EndedAt,
		Note:        input.Note,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&raid).Error; err != nil {
			return err
		}
		if len(input.Attendances) == 0 {
			return nil
		}
		attendances := make([]*Attendance, 0, len(input.Attendances))
		for _, a := range input.Attendances {
			row := a.toModel(guildId, raid.ID)
			attendances = append(attendances, &row)
		}
		if err := tx.Create(&attendances).Error; err != nil {
			return err
		}
		raid.Attendances = attendances
		return nil
	})
	if err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateRaid
		}
		return nil, err
	}
	return &raid, nil
}

func UpdateRaid(ctx context.Context, id int, input *NewRaid) (*Raid, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	raid, err := utils.FetchModel[Raid](ctx, guildId, id)
	if err != nil {
		return nil, err
	}
	// attendance is edited row by row
	input.Attendances = nil
	if err := input.validate(ctx, guildId, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(raid).Updates(map[string]interface{}{
		"TeamId":      input.TeamId,
		"ScenarioId":  input.ScenarioId,
		"ScheduledAt": input.ScheduledAt.UTC(),
		"Title":       strings.TrimSpace(input.Title),
		"Note":        input.Note,
	}).Error
	if err != nil {
		return nil, err
	}
	return raid, nil
}

func DeleteRaid(ctx context.Context, id int) (*Raid, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	raid, err := utils.FetchModel[Raid](ctx, guildId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("raid_id = ?", id).Delete(&Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(raid).Error
	})
	if err != nil {
		return nil, err
	}
	return raid, nil
}

func GetRaid(ctx context.Context, id int) (*Raid, error) {
	return GetResource[Raid](ctx, id, "Attendances")
}

func ListRaids(ctx context.Context, filter RaidFilter) ([]*Raid, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("guild_id = ?", guildId)
	if filter.TeamId != nil {
		dbCtx = dbCtx.Where("team_id = ?", *filter.TeamId)
	}
	if filter.ScenarioId != nil {
		dbCtx = dbCtx.Where("scenario_id = ?", *filter.ScenarioId)
	}
	if filter.From != nil {
		dbCtx = dbCtx.Where("scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		dbCtx = dbCtx.Where("scheduled_at <= ?", *filter.To)
	}

	var results []*Raid
	err = dbCtx.Order(utils.SortClause(filter.Sort, raidSortColumns, "scheduled_at DESC")).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
