package models

import (
	"encoding/json"
	"errors"
	"strings"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "A"
	UserRoleOfficer UserRole = "O"
	UserRoleMember  UserRole = "M"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleOfficer, UserRoleMember:
		return true
	}
	return false
}

// officers and admins may write roster data
func (r UserRole) CanWrite() bool {
	return r == UserRoleAdmin || r == UserRoleOfficer
}

type CharacterRole string

const (
	CharacterRoleTank   CharacterRole = "Tank"
	CharacterRoleHealer CharacterRole = "Healer"
	CharacterRoleDPS    CharacterRole = "DPS"
)

func (r CharacterRole) IsValid() bool {
	switch r {
	case CharacterRoleTank, CharacterRoleHealer, CharacterRoleDPS:
		return true
	}
	return false
}

// ParseCharacterRole accepts the API spelling in any case ("tank", "DPS").
func ParseCharacterRole(s string) (CharacterRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tank":
		return CharacterRoleTank, nil
	case "healer":
		return CharacterRoleHealer, nil
	case "dps":
		return CharacterRoleDPS, nil
	}
	return "", errors.New("invalid character role: " + s)
}

func (r *CharacterRole) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("character role must be string")
	}
	if s == "" {
		*r = ""
		return nil
	}
	role, err := ParseCharacterRole(s)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

type Difficulty string

const (
	DifficultyNormal Difficulty = "Normal"
	DifficultyHeroic Difficulty = "Heroic"
	DifficultyMythic Difficulty = "Mythic"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyNormal, DifficultyHeroic, DifficultyMythic:
		return true
	}
	return false
}
