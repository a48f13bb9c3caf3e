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

// Team is a raid roster.
type Team struct {
	ID          int          `gorm:"primary_key" json:"id"`
	GuildId     string       `gorm:"type:char(36);index;not null;uniqueIndex:idx_team_guild_name" json:"guild_id"`
	Name        string       `gorm:"size:100;not null;uniqueIndex:idx_team_guild_name" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Characters  []*Character `gorm:"many2many:team_characters" json:"characters,omitempty"`
	IsActive    *bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTeam struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	CharacterIds []int  `json:"character_ids"`
}

func (t Team) GetGuildId() string {
	return t.GuildId
}

func (t Team) RemoveAllRedis() error {
	return utils.RemoveRedisList[AllTeam](t.GuildId)
}

func (input *NewTeam) validate(ctx context.Context, guildId string, id int) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("name is required")
	}
	if err := utils.ValidateUnique[Team](ctx, guildId, "name", input.Name, id); err != nil {
		return err
	}
	if err := utils.ValidateResourcesId[Character](ctx, guildId, input.CharacterIds); err != nil {
		return errors.New("character not found")
	}
	return nil
}

func CreateTeam(ctx context.Context, input *NewTeam) (*Team, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, guildId, 0); err != nil {
		return nil, err
	}

	team := Team{
		GuildId:     guildId,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		IsActive:    utils.NewTrue(),
	}
	for _, id := range utils.UniqueSlice(input.CharacterIds) {
		team.Characters = append(team.Characters, &Character{ID: id})
	}

	db := config.GetDB()
	// characters already exist, only the join rows are written
	if err := db.WithContext(ctx).Omit("Characters.*").Create(&team).Error; err != nil {
		return nil, utils.FriendlyDBError(err, "name")
	}
	if err := team.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &team, nil
}

func UpdateTeam(ctx context.Context, id int, input *NewTeam) (*Team, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, guildId, id); err != nil {
		return nil, err
	}
	team, err := utils.FetchModel[Team](ctx, guildId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(team).Updates(map[string]interface{}{
		"Name":        strings.TrimSpace(input.Name),
		"Description": input.Description,
	}).Error
	if err != nil {
		return nil, utils.FriendlyDBError(err, "name")
	}
	if err := team.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return team, nil
}

func DeleteTeam(ctx context.Context, id int) (*Team, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	team, err := utils.FetchModel[Team](ctx, guildId, id)
	if err != nil {
		return nil, err
	}

	// raids keep their team
	count, err := utils.ResourceCountWhere[Raid](ctx, guildId, "team_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("team has raids")
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Model(team).Association("Characters").Clear(); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Delete(team).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	if err := team.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return team, nil
}

func GetTeam(ctx context.Context, id int) (*Team, error) {
	return GetResource[Team](ctx, id, "Characters")
}

func ListTeams(ctx context.Context, filter ListFilter) ([]*Team, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*Team
	dbCtx := filter.apply(db.WithContext(ctx).Where("guild_id = ?", guildId), nil)
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ListAllTeams(ctx context.Context) ([]*AllTeam, error) {
	return ListAllResource[Team, AllTeam](ctx, "name")
}

func ToggleActiveTeam(ctx context.Context, id int, isActive bool) (*Team, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	team, err := ToggleActiveModel[Team](ctx, guildId, id, isActive)
	if err != nil {
		return nil, err
	}
	if err := team.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return team, nil
}

// AssignCharacters adds characters to the team; already assigned ones are kept.
func AssignCharacters(ctx context.Context, teamId int, characterIds []int) (*Team, error) {
	return changeTeamCharacters(ctx, teamId, characterIds, true)
}

func UnassignCharacters(ctx context.Context, teamId int, characterIds []int) (*Team, error) {
	return changeTeamCharacters(ctx, teamId, characterIds, false)
}

func changeTeamCharacters(ctx context.Context, teamId int, characterIds []int, assign bool) (*Team, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	ids := utils.UniqueSlice(characterIds)
	if len(ids) == 0 {
		return nil, errors.New("character ids are required")
	}
	team, err := utils.FetchModel[Team](ctx, guildId, teamId)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourcesId[Character](ctx, guildId, ids); err != nil {
		return nil, errors.New("character not found")
	}

	characters := make([]*Character, 0, len(ids))
	for _, id := range ids {
		characters = append(characters, &Character{ID: id})
	}

	db := config.GetDB()
	association := db.WithContext(ctx).Model(team).Omit("Characters.*").Association("Characters")
	if assign {
		err = association.Append(characters)
	} else {
		err = association.Delete(characters)
	}
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[AllCharacter](guildId); err != nil {
		return nil, err
	}
	return GetTeam(ctx, teamId)
}

// ListTeamCharacters returns the active characters on a roster, ordered by name.
func ListTeamCharacters(ctx context.Context, teamId int) ([]*Character, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Team](ctx, guildId, teamId); err != nil {
		return nil, errors.New("team not found")
	}

	var results []*Character
	if err := teamCharactersQuery(config.GetDB().WithContext(ctx), teamId, guildId).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// duplicate names on a roster fall back to id so reconciliation sees a stable order
func teamCharactersQuery(db *gorm.DB, teamId int, guildId string) *gorm.DB {
	return db.Model(&Character{}).
		Joins("JOIN team_characters ON team_characters.character_id = characters.id").
		Where("team_characters.team_id = ? AND characters.guild_id = ? AND characters.is_active = ?", teamId, guildId, true).
		Order("characters.name, characters.id")
}
