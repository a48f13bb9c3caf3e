package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/utils"
)

type Guild struct {
	ID         uuid.UUID `gorm:"type:char(36);primary_key" json:"id"`
	Name       string    `gorm:"size:100;not null;unique" json:"name"`
	Realm      string    `gorm:"size:100" json:"realm"`
	Region     string    `gorm:"size:10" json:"region"`
	WclGuildId int       `gorm:"default:0" json:"wcl_guild_id"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewGuild struct {
	Name       string `json:"name" binding:"required"`
	Realm      string `json:"realm"`
	Region     string `json:"region"`
	WclGuildId int    `json:"wcl_guild_id"`
}

func (input *NewGuild) validate(ctx context.Context, id string) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("name is required")
	}
	db := config.GetDB()
	var count int64
	dbCtx := db.WithContext(ctx).Model(&Guild{}).Where("name = ?", input.Name)
	if id != "" {
		dbCtx = dbCtx.Not("id = ?", id)
	}
	if err := dbCtx.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate name")
	}
	return nil
}

// CreateGuild is only reachable by admins and the seed tool.
func CreateGuild(ctx context.Context, input *NewGuild) (*Guild, error) {
	if err := input.validate(ctx, ""); err != nil {
		return nil, err
	}

	guild := Guild{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(input.Name),
		Realm:      input.Realm,
		Region:     strings.ToUpper(input.Region),
		WclGuildId: input.WclGuildId,
		IsActive:   utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&guild).Error; err != nil {
		return nil, utils.FriendlyDBError(err, "name")
	}
	return &guild, nil
}

// current user's guild
func GetCurrentGuild(ctx context.Context) (*Guild, error) {
	guildId, ok := utils.GetGuildIdFromContext(ctx)
	if !ok || guildId == "" {
		return nil, errors.New("guild id is required")
	}

	var guild Guild
	exists, err := config.GetRedisObject("Guild:"+guildId, &guild)
	if err != nil {
		return nil, err
	}
	if exists {
		return &guild, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", guildId).First(&guild).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := config.SetRedisObject("Guild:"+guildId, &guild, utils.GetCacheLifespan()); err != nil {
		return nil, err
	}
	return &guild, nil
}

func UpdateCurrentGuild(ctx context.Context, input *NewGuild) (*Guild, error) {
	guild, err := GetCurrentGuild(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, guild.ID.String()); err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(guild).Updates(map[string]interface{}{
		"Name":       strings.TrimSpace(input.Name),
		"Realm":      input.Realm,
		"Region":     strings.ToUpper(input.Region),
		"WclGuildId": input.WclGuildId,
	}).Error
	if err != nil {
		return nil, utils.FriendlyDBError(err, "name")
	}
	if err := config.RemoveRedisKey("Guild:" + guild.ID.String()); err != nil {
		return nil, err
	}
	return guild, nil
}

// FindGuildByName is used by the seed tool.
func FindGuildByName(ctx context.Context, name string) (*Guild, error) {
	var guild Guild
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("name = ?", name).First(&guild).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &guild, nil
}
