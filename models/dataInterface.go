package models

import (
	"time"

	"github.com/guildroster/roster_backend/utils"
)

type Identifier interface {
	GetId() int
}

// interface for dataloader result
type Data interface {
	Identifier
	GetDefault(int) Data
}

func (c Character) GetId() int {
	return c.ID
}

func (c Character) GetDefault(id int) Data {
	return Character{
		ID:        id,
		Name:      "unknown",
		Role:      CharacterRoleDPS,
		IsMain:    utils.NewFalse(),
		IsActive:  utils.NewFalse(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (s Scenario) GetId() int {
	return s.ID
}

func (s Scenario) GetDefault(id int) Data {
	return Scenario{
		ID:         id,
		Difficulty: DifficultyNormal,
		IsProgress: utils.NewFalse(),
		IsActive:   utils.NewFalse(),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func (t Team) GetId() int {
	return t.ID
}

func (t Team) GetDefault(id int) Data {
	return Team{
		ID:        id,
		IsActive:  utils.NewFalse(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (m GuildMember) GetId() int {
	return m.ID
}

func (m GuildMember) GetDefault(id int) Data {
	return GuildMember{
		ID:        id,
		IsActive:  utils.NewFalse(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// interface for one-to-many dataloader results
type RelatedData interface {
	GetReferenceId() int
}

func (a Attendance) GetReferenceId() int {
	return a.RaidId
}
