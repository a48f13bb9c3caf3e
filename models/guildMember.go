package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/utils"
)

type GuildMember struct {
	ID         int          `gorm:"primary_key" json:"id"`
	GuildId    string       `gorm:"type:char(36);index;not null;uniqueIndex:idx_member_guild_name" json:"guild_id"`
	Name       string       `gorm:"size:100;not null;uniqueIndex:idx_member_guild_name" json:"name"`
	DiscordTag string       `gorm:"size:100" json:"discord_tag"`
	Rank       string       `gorm:"size:50" json:"rank"`
	Characters []*Character `json:"characters,omitempty"`
	IsActive   *bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewGuildMember struct {
	Name       string `json:"name" binding:"required"`
	DiscordTag string `json:"discord_tag"`
	Rank       string `json:"rank"`
}

func (m GuildMember) GetGuildId() string {
	return m.GuildId
}

func (m GuildMember) RemoveAllRedis() error {
	return utils.RemoveRedisList[AllGuildMember](m.GuildId)
}

// validate input for both create & update. (id = 0 for create)
func (input *NewGuildMember) validate(ctx context.Context, guildId string, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("name is required")
	}
	if err := utils.ValidateUnique[GuildMember](ctx, guildId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateGuildMember(ctx context.Context, input *NewGuildMember) (*GuildMember, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, guildId, 0); err != nil {
		return nil, err
	}

	member := GuildMember{
		GuildId:    guildId,
		Name:       strings.TrimSpace(input.Name),
		DiscordTag: input.DiscordTag,
		Rank:       input.Rank,
		IsActive:   utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, utils.FriendlyDBError(err, "name")
	}
	if err := member.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &member, nil
}

func UpdateGuildMember(ctx context.Context, id int, input *NewGuildMember) (*GuildMember, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, guildId, id); err != nil {
		return nil, err
	}

	member, err := utils.FetchModel[GuildMember](ctx, guildId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(member).Updates(map[string]interface{}{
		"Name":       strings.TrimSpace(input.Name),
		"DiscordTag": input.DiscordTag,
		"Rank":       input.Rank,
	}).Error
	if err != nil {
		return nil, utils.FriendlyDBError(err, "name")
	}
	if err := member.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return member, nil
}

func DeleteGuildMember(ctx context.Context, id int) (*GuildMember, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	member, err := utils.FetchModel[GuildMember](ctx, guildId, id)
	if err != nil {
		return nil, err
	}

	// check if member still owns characters
	count, err := utils.ResourceCountWhere[Character](ctx, guildId, "guild_member_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("guild member has characters")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(member).Error; err != nil {
		return nil, err
	}
	if err := member.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return member, nil
}

func GetGuildMember(ctx context.Context, id int) (*GuildMember, error) {
	return GetResource[GuildMember](ctx, id, "Characters")
}

func ListGuildMembers(ctx context.Context, filter ListFilter) ([]*GuildMember, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*GuildMember
	dbCtx := filter.apply(db.WithContext(ctx).Where("guild_id = ?", guildId), nil)
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ListAllGuildMembers(ctx context.Context) ([]*AllGuildMember, error) {
	return ListAllResource[GuildMember, AllGuildMember](ctx, "name")
}

func ToggleActiveGuildMember(ctx context.Context, id int, isActive bool) (*GuildMember, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	member, err := ToggleActiveModel[GuildMember](ctx, guildId, id, isActive)
	if err != nil {
		return nil, err
	}
	if err := member.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return member, nil
}
