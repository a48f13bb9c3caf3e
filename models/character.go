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

// Character is a playable toon owned by a guild member.
type Character struct {
	ID            int           `gorm:"primary_key" json:"id"`
	GuildId       string        `gorm:"type:char(36);index;not null;uniqueIndex:idx_character_guild_name_realm" json:"guild_id"`
	GuildMemberId int           `gorm:"index;not null" json:"guild_member_id"`
	Name          string        `gorm:"size:100;not null;uniqueIndex:idx_character_guild_name_realm" json:"name"`
	Realm         string        `gorm:"size:100;not null;default:'';uniqueIndex:idx_character_guild_name_realm" json:"realm"`
	Class         string        `gorm:"size:50;not null" json:"class"`
	Role          CharacterRole `gorm:"type:enum('Tank', 'Healer', 'DPS');default:DPS" json:"role"`
	IsMain        *bool         `gorm:"not null;default:false" json:"is_main"`
	Teams         []*Team       `gorm:"many2many:team_characters" json:"teams,omitempty"`
	IsActive      *bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCharacter struct {
	GuildMemberId int           `json:"guild_member_id" binding:"required"`
	Name          string        `json:"name" binding:"required"`
	Realm         string        `json:"realm"`
	Class         string        `json:"class" binding:"required"`
	Role          CharacterRole `json:"role"`
	IsMain        *bool         `json:"is_main"`
	TeamIds       []int         `json:"team_ids"`
}

type CharacterFilter struct {
	ListFilter
	Class    *string
	Role     *CharacterRole
	TeamId   *int
	MemberId *int
}

var characterSortColumns = map[string]string{
	"name":       "characters.name",
	"created_at": "characters.created_at",
	"class":      "characters.class",
	"role":       "characters.role",
}

func (c Character) GetGuildId() string {
	return c.GuildId
}

func (c Character) RemoveAllRedis() error {
	return utils.RemoveRedisList[AllCharacter](c.GuildId)
}

// validate input for both create & update. (id = 0 for create)
func (input *NewCharacter) validate(ctx context.Context, guildId string, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Class = strings.TrimSpace(input.Class)
	if input.Name == "" {
		return errors.New("name is required")
	}
	if input.Class == "" {
		return errors.New("class is required")
	}
	if input.Role == "" {
		input.Role = CharacterRoleDPS
	}
	if !input.Role.IsValid() {
		return errors.New("invalid role")
	}
	// name + realm is unique within the guild
	count, err := utils.ResourceCountWhere[Character](ctx, guildId, "name = ? AND realm = ? AND NOT id = ?", input.Name, input.Realm, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate name")
	}
	if err := utils.ValidateResourceId[GuildMember](ctx, guildId, input.GuildMemberId); err != nil {
		return errors.New("guild member not found")
	}
	if err := utils.ValidateResourcesId[Team](ctx, guildId, input.TeamIds); err != nil {
		return errors.New("team not found")
	}
	return nil
}

func CreateCharacter(ctx context.Context, input *NewCharacter) (*Character, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, guildId, 0); err != nil {
		return nil, err
	}

	character := Character{
		GuildId:       guildId,
		GuildMemberId: input.GuildMemberId,
		Name:          input.Name,
		Realm:         input.Realm,
		Class:         input.Class,
		Role:          input.Role,
		IsMain:        utils.NewFalse(),
		IsActive:      utils.NewTrue(),
	}
	if input.IsMain != nil {
		character.IsMain = input.IsMain
	}
	for _, teamId := range utils.UniqueSlice(input.TeamIds) {
		character.Teams = append(character.Teams, &Team{ID: teamId})
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Omit("Teams.*").Create(&character).Error; err != nil {
		return nil, utils.FriendlyDBError(err, "name")
	}
	if err := character.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &character, nil
}

func UpdateCharacter(ctx context.Context, id int, input *NewCharacter) (*Character, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, guildId, id); err != nil {
		return nil, err
	}
	character, err := utils.FetchModel[Character](ctx, guildId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"GuildMemberId": input.GuildMemberId,
		"Name":          input.Name,
		"Realm":         input.Realm,
		"Class":         input.Class,
		"Role":          input.Role,
	}
	if input.IsMain != nil {
		updates["IsMain"] = *input.IsMain
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(character).Updates(updates).Error; err != nil {
			return err
		}
		// nil keeps the current rosters, an empty slice clears them
		if input.TeamIds != nil {
			teams := make([]*Team, 0, len(input.TeamIds))
			for _, teamId := range utils.UniqueSlice(input.TeamIds) {
				teams = append(teams, &Team{ID: teamId})
			}
			if err := tx.Model(character).Omit("Teams.*").Association("Teams").Replace(teams); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, utils.FriendlyDBError(err, "name")
	}
	if err := character.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return character, nil
}

func DeleteCharacter(ctx context.Context, id int) (*Character, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	character, err := utils.FetchModel[Character](ctx, guildId, id)
	if err != nil {
		return nil, err
	}

	// attendance history keeps the character
	count, err := utils.ResourceCountWhere[Attendance](ctx, guildId, "character_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("character has attendance records")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(character).Association("Teams").Clear(); err != nil {
			return err
		}
		return tx.Delete(character).Error
	})
	if err != nil {
		return nil, err
	}
	if err := character.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return character, nil
}

func GetCharacter(ctx context.Context, id int) (*Character, error) {
	return GetResource[Character](ctx, id, "Teams")
}

func ListCharacters(ctx context.Context, filter CharacterFilter) ([]*Character, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Character{}).Where("characters.guild_id = ?", guildId)
	if filter.Name != nil && len(strings.TrimSpace(*filter.Name)) > 0 {
		dbCtx = dbCtx.Where("characters.name LIKE ?", "%"+strings.TrimSpace(*filter.Name)+"%")
	}
	if filter.IsActive != nil {
		dbCtx = dbCtx.Where("characters.is_active = ?", *filter.IsActive)
	}
	if filter.Class != nil && *filter.Class != "" {
		dbCtx = dbCtx.Where("characters.class = ?", *filter.Class)
	}
	if filter.Role != nil && *filter.Role != "" {
		dbCtx = dbCtx.Where("characters.role = ?", *filter.Role)
	}
	if filter.MemberId != nil {
		dbCtx = dbCtx.Where("characters.guild_member_id = ?", *filter.MemberId)
	}
	if filter.TeamId != nil {
		dbCtx = dbCtx.Joins("JOIN team_characters ON team_characters.character_id = characters.id").
			Where("team_characters.team_id = ?", *filter.TeamId)
	}

	var results []*Character
	err = dbCtx.Order(utils.SortClause(filter.Sort, characterSortColumns, "characters.name ASC")).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func ListAllCharacters(ctx context.Context) ([]*AllCharacter, error) {
	return ListAllResource[Character, AllCharacter](ctx, "name")
}

func ToggleActiveCharacter(ctx context.Context, id int, isActive bool) (*Character, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	character, err := ToggleActiveModel[Character](ctx, guildId, id, isActive)
	if err != nil {
		return nil, err
	}
	if err := character.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return character, nil
}
