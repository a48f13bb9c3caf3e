package reconcile

import (
	"sort"
	"strings"

	"github.com/guildroster/roster_backend/utils"
	"github.com/guildroster/roster_backend/warcraftlogs"
)

type CharacterCreateRequest struct {
	DisplayName  string            `json:"display_name" validate:"required,max=100"`
	Class        string            `json:"class" validate:"required,max=50"`
	Role         warcraftlogs.Role `json:"role" validate:"oneof=Tank Healer DPS"`
	IsMain       bool              `json:"is_main"`
	MembershipId int               `json:"membership_id" validate:"gt=0"`
	RosterIds    []int             `json:"roster_ids" validate:"min=1,dive,gt=0"`
}

// ResolveOverrides replaces the values pre-filled from the participant.
type ResolveOverrides struct {
	Name   *string `json:"name"`
	Class  *string `json:"class"`
	Role   *string `json:"role"`
	IsMain *bool   `json:"is_main"`
}

// BuildCharacterCreateRequest pre-fills a create request from an unknown
// participant: its name and class, its role or DPS, not a main, on teamId.
func BuildCharacterCreateRequest(entry UnknownEntry, membershipId int, teamId int) CharacterCreateRequest {
	role := entry.Participant.Role
	if role == warcraftlogs.RoleNone {
		role = warcraftlogs.RoleDPS
	}
	return CharacterCreateRequest{
		DisplayName:  entry.Participant.Name,
		Class:        entry.Participant.Class,
		Role:         role,
		IsMain:       false,
		MembershipId: membershipId,
		RosterIds:    []int{teamId},
	}
}

func parseRole(s string) (warcraftlogs.Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tank":
		return warcraftlogs.RoleTank, true
	case "healer":
		return warcraftlogs.RoleHealer, true
	case "dps":
		return warcraftlogs.RoleDPS, true
	}
	return warcraftlogs.RoleNone, false
}

// WithOverrides applies operator changes and validates the final request.
func (req CharacterCreateRequest) WithOverrides(o ResolveOverrides) (CharacterCreateRequest, error) {
	if o.Name != nil {
		req.DisplayName = strings.TrimSpace(*o.Name)
	}
	if o.Class != nil {
		req.Class = strings.TrimSpace(*o.Class)
	}
	if o.Role != nil {
		role, ok := parseRole(*o.Role)
		if !ok {
			return req, &InvalidInputError{Reason: "invalid role " + *o.Role}
		}
		req.Role = role
	}
	if o.IsMain != nil {
		req.IsMain = *o.IsMain
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func (req CharacterCreateRequest) Validate() error {
	if err := utils.Validator().Struct(req); err != nil {
		fields := utils.ProcessValidationErrors(err)
		reasons := make([]string, 0, len(fields))
		for field, tag := range fields {
			reasons = append(reasons, field+" "+tag)
		}
		return &InvalidInputError{Reason: strings.Join(sortStrings(reasons), ", ")}
	}
	return nil
}

func sortStrings(s []string) []string {
	sort.Strings(s)
	return s
}
