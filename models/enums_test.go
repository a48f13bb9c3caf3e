package models

import (
	"encoding/json"
	"testing"
)

func TestParseCharacterRole(t *testing.T) {
	cases := []struct {
		in      string
		want    CharacterRole
		wantErr bool
	}{
		{"Tank", CharacterRoleTank, false},
		{"healer", CharacterRoleHealer, false},
		{" dps ", CharacterRoleDPS, false},
		{"support", "", true},
	}
	for _, c := range cases {
		got, err := ParseCharacterRole(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseCharacterRole(%q) expected error", c.in)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Fatalf("ParseCharacterRole(%q) = %q, %v; want %q", c.in, got, err, c.want)
		}
	}
}

func TestCharacterRoleUnmarshalJSON(t *testing.T) {
	var input NewCharacter
	if err := json.Unmarshal([]byte(`{"name":"Alice","class":"Mage","role":"healer"}`), &input); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if input.Role != CharacterRoleHealer {
		t.Fatalf("role = %q, want Healer", input.Role)
	}
	if err := json.Unmarshal([]byte(`{"role":"bard"}`), &input); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestUserRoleCanWrite(t *testing.T) {
	if !UserRoleOfficer.CanWrite() || !UserRoleAdmin.CanWrite() {
		t.Fatalf("officers and admins write")
	}
	if UserRoleMember.CanWrite() {
		t.Fatalf("members are read only")
	}
	if UserRole("C").IsValid() {
		t.Fatalf("unknown role should be invalid")
	}
}

func TestParseScenarioSelector(t *testing.T) {
	id, name, err := ParseScenarioSelector("12")
	if err != nil || id != 12 || name != "" {
		t.Fatalf("numeric selector: id=%d name=%q err=%v", id, name, err)
	}
	id, name, err = ParseScenarioSelector(" Liberation of Undermine ")
	if err != nil || id != 0 || name != "Liberation of Undermine" {
		t.Fatalf("name selector: id=%d name=%q err=%v", id, name, err)
	}
	if _, _, err := ParseScenarioSelector(""); err == nil {
		t.Fatalf("expected error for empty selector")
	}
	if _, _, err := ParseScenarioSelector("-3"); err == nil {
		t.Fatalf("expected error for negative id")
	}
}
