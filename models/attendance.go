package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/utils"
)

type Attendance struct {
	ID            int       `gorm:"primary_key" json:"id"`
	GuildId       string    `gorm:"type:char(36);index;not null" json:"guild_id"`
	RaidId        int       `gorm:"not null;uniqueIndex:idx_attendance_raid_character" json:"raid_id"`
	CharacterId   int       `gorm:"not null;index;uniqueIndex:idx_attendance_raid_character" json:"character_id"`
	IsPresent     *bool     `gorm:"not null;default:false" json:"is_present"`
	IsBenched     *bool     `gorm:"not null;default:false" json:"is_benched"`
	Note          string    `gorm:"size:255" json:"note"`
	BenchedReason string    `gorm:"size:255" json:"benched_reason"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAttendance struct {
	CharacterId   int    `json:"character_id" binding:"required"`
	IsPresent     bool   `json:"is_present"`
	IsBenched     bool   `json:"is_benched"`
	Note          string `json:"note"`
	BenchedReason string `json:"benched_reason"`
}

func (a Attendance) GetGuildId() string {
	return a.GuildId
}

// normalize enforces the record invariants: a character appears once,
// present and benched exclude each other, and only benched rows keep a reason.
func normalizeAttendances(input []NewAttendance) ([]NewAttendance, error) {
	seen := make(map[int]bool, len(input))
	result := make([]NewAttendance, 0, len(input))
	for _, a := range input {
		if a.CharacterId <= 0 {
			return nil, errors.New("character id is required")
		}
		if seen[a.CharacterId] {
			return nil, errors.New("duplicate character in attendance")
		}
		seen[a.CharacterId] = true
		if a.IsPresent && a.IsBenched {
			return nil, errors.New("attendance cannot be present and benched")
		}
		a.Note = strings.TrimSpace(a.Note)
		if a.IsBenched {
			a.BenchedReason = strings.TrimSpace(a.BenchedReason)
		} else {
			a.BenchedReason = ""
		}
		result = append(result, a)
	}
	return result, nil
}

func (input NewAttendance) toModel(guildId string, raidId int) Attendance {
	isPresent := input.IsPresent
	isBenched := input.IsBenched
	return Attendance{
		GuildId:       guildId,
		RaidId:        raidId,
		CharacterId:   input.CharacterId,
		IsPresent:     &isPresent,
		IsBenched:     &isBenched,
		Note:          input.Note,
		BenchedReason: input.BenchedReason,
	}
}

// UpdateAttendance edits one attendance row of a committed raid.
func UpdateAttendance(ctx context.Context, raidId int, id int, input *NewAttendance) (*Attendance, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeAttendances([]NewAttendance{*input})
	if err != nil {
		return nil, err
	}
	in := normalized[0]

	db := config.GetDB()
	var attendance Attendance
	err = db.WithContext(ctx).
		Where("guild_id = ? AND raid_id = ?", guildId, raidId).
		First(&attendance, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if attendance.CharacterId != in.CharacterId {
		return nil, errors.New("character cannot be changed")
	}

	err = db.WithContext(ctx).Model(&attendance).Updates(map[string]interface{}{
		"IsPresent":     in.IsPresent,
		"IsBenched":     in.IsBenched,
		"Note":          in.Note,
		"BenchedReason": in.BenchedReason,
	}).Error
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

// TeamAttendanceRow is one attendance row joined with its raid, for reports.
type TeamAttendanceRow struct {
	RaidId        int       `json:"raid_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	RaidTitle     string    `json:"raid_title"`
	CharacterId   int       `json:"character_id"`
	CharacterName string    `json:"character_name"`
	Class         string    `json:"class"`
	IsPresent     bool      `json:"is_present"`
	IsBenched     bool      `json:"is_benched"`
}

// ListTeamAttendance returns every attendance row of a team's raids in range,
// ordered by raid time then character name.
func ListTeamAttendance(ctx context.Context, teamId int, from *time.Time, to *time.Time) ([]*TeamAttendanceRow, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Team](ctx, guildId, teamId); err != nil {
		return nil, errors.New("team not found")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Table("attendances").
		Select("raids.id AS raid_id, raids.scheduled_at, raids.title AS raid_title, " +
			"characters.id AS character_id, characters.name AS character_name, characters.class, " +
			"attendances.is_present, attendances.is_benched").
		Joins("JOIN raids ON raids.id = attendances.raid_id").
		Joins("JOIN characters ON characters.id = attendances.character_id").
		Where("attendances.guild_id = ? AND raids.team_id = ?", guildId, teamId)
	if from != nil {
		dbCtx = dbCtx.Where("raids.scheduled_at >= ?", *from)
	}
	if to != nil {
		dbCtx = dbCtx.Where("raids.scheduled_at <= ?", *to)
	}

	var rows []*TeamAttendanceRow
	if err := dbCtx.Order("raids.scheduled_at, characters.name").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
