package models

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/utils"
)

// Scenario is a raid instance at a difficulty, e.g. "Nerub-ar Palace" Mythic.
type Scenario struct {
	ID         int        `gorm:"primary_key" json:"id"`
	GuildId    string     `gorm:"type:char(36);index;not null;uniqueIndex:idx_scenario_guild_name" json:"guild_id"`
	Name       string     `gorm:"size:100;not null;uniqueIndex:idx_scenario_guild_name" json:"name"`
	Difficulty Difficulty `gorm:"type:enum('Normal', 'Heroic', 'Mythic');default:Normal" json:"difficulty"`
	IsProgress *bool      `gorm:"not null;default:false" json:"is_progress"`
	IsActive   *bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewScenario struct {
	Name       string     `json:"name" binding:"required"`
	Difficulty Difficulty `json:"difficulty"`
	IsProgress *bool      `json:"is_progress"`
}

func (s Scenario) GetGuildId() string {
	return s.GuildId
}

func (s Scenario) RemoveAllRedis() error {
	return utils.RemoveRedisList[AllScenario](s.GuildId)
}

func (input *NewScenario) validate(ctx context.Context, guildId string, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return errors.New("name is required")
	}
	if input.Difficulty == "" {
		input.Difficulty = DifficultyNormal
	}
	if !input.Difficulty.IsValid() {
		return errors.New("invalid difficulty")
	}
	return utils.ValidateUnique[Scenario](ctx, guildId, "name", input.Name, id)
}

func CreateScenario(ctx context.Context, input *NewScenario) (*Scenario, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, guildId, 0); err != nil {
		return nil, err
	}

	scenario := Scenario{
		GuildId:    guildId,
		Name:       input.Name,
		Difficulty: input.Difficulty,
		IsProgress: utils.NewFalse(),
		IsActive:   utils.NewTrue(),
	}
	if input.IsProgress != nil {
		scenario.IsProgress = input.IsProgress
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&scenario).Error; err != nil {
		return nil, utils.FriendlyDBError(err, "name")
	}
	if err := scenario.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func UpdateScenario(ctx context.Context, id int, input *NewScenario) (*Scenario, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, guildId, id); err != nil {
		return nil, err
	}
	scenario, err := utils.FetchModel[Scenario](ctx, guildId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":       input.Name,
		"Difficulty": input.Difficulty,
	}
	if input.IsProgress != nil {
		updates["IsProgress"] = *input.IsProgress
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(scenario).Updates(updates).Error; err != nil {
		return nil, utils.FriendlyDBError(err, "name")
	}
	if err := scenario.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return scenario, nil
}

func DeleteScenario(ctx context.Context, id int) (*Scenario, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	scenario, err := utils.FetchModel[Scenario](ctx, guildId, id)
	if err != nil {
		return nil, err
	}
	count, err := utils.ResourceCountWhere[Raid](ctx, guildId, "scenario_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("scenario has raids")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(scenario).Error; err != nil {
		return nil, err
	}
	if err := scenario.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return scenario, nil
}

func GetScenario(ctx context.Context, id int) (*Scenario, error) {
	return GetResource[Scenario](ctx, id)
}

func ListScenarios(ctx context.Context, filter ListFilter, difficulty *Difficulty) ([]*Scenario, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("guild_id = ?", guildId)
	if difficulty != nil && *difficulty != "" {
		dbCtx = dbCtx.Where("difficulty = ?", *difficulty)
	}
	var results []*Scenario
	if err := filter.apply(dbCtx, nil).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ListAllScenarios(ctx context.Context) ([]*AllScenario, error) {
	return ListAllResource[Scenario, AllScenario](ctx, "name")
}

func ToggleActiveScenario(ctx context.Context, id int, isActive bool) (*Scenario, error) {
	guildId, err := guildIdOrError(ctx)
	if err != nil {
		return nil, err
	}
	scenario, err := ToggleActiveModel[Scenario](ctx, guildId, id, isActive)
	if err != nil {
		return nil, err
	}
	if err := scenario.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return scenario, nil
}

// ParseScenarioSelector splits a selector into a numeric id or a name.
// "12" selects by id; anything else selects by name.
func ParseScenarioSelector(selector string) (id int, name string, err error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return 0, "", errors.New("scenario selector is required")
	}
	if n, convErr := strconv.Atoi(selector); convErr == nil {
		if n <= 0 {
			return 0, "", errors.New("invalid scenario id")
		}
		return n, "", nil
	}
	return 0, selector, nil
}

// FindScenarioBySelector resolves a selector to an active scenario of the guild.
func FindScenarioBySelector(ctx context.Context, guildId string, selector string) (*Scenario, error) {
	id, name, err := ParseScenarioSelector(selector)
	if err != nil {
		return nil, err
	}
	if id > 0 {
		return utils.FetchModel[Scenario](ctx, guildId, id)
	}

	db := config.GetDB()
	var scenario Scenario
	err = db.WithContext(ctx).
		Where("guild_id = ? AND LOWER(name) = ?", guildId, strings.ToLower(name)).
		First(&scenario).Error
	if err != nil {
		return nil, errors.New("scenario not found")
	}
	return &scenario, nil
}
