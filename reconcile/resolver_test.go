package reconcile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/guildroster/roster_backend/warcraftlogs"
)

func strPtr(s string) *string { return &s }

func TestBuildCharacterCreateRequest(t *testing.T) {
	tests := []struct {
		name  string
		entry UnknownEntry
		want  CharacterCreateRequest
	}{
		{
			name:  "role from report",
			entry: UnknownEntry{Participant: participant("1", "Stranger", "Rogue", warcraftlogs.RoleTank)},
			want:  CharacterCreateRequest{DisplayName: "Stranger", Class: "Rogue", Role: warcraftlogs.RoleTank, MembershipId: 4, RosterIds: []int{9}},
		},
		{
			name:  "no role defaults to dps",
			entry: UnknownEntry{Participant: participant("2", "Quiet", "Priest", warcraftlogs.RoleNone)},
			want:  CharacterCreateRequest{DisplayName: "Quiet", Class: "Priest", Role: warcraftlogs.RoleDPS, MembershipId: 4, RosterIds: []int{9}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildCharacterCreateRequest(tt.entry, 4, 9)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("request mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithOverrides(t *testing.T) {
	base := BuildCharacterCreateRequest(UnknownEntry{Participant: participant("1", "Stranger", "Rogue", "")}, 4, 9)
	isMain := true

	got, err := base.WithOverrides(ResolveOverrides{Name: strPtr(" Strangér "), Role: strPtr("healer"), IsMain: &isMain})
	if err != nil {
		t.Fatalf("WithOverrides() error = %v", err)
	}
	want := CharacterCreateRequest{DisplayName: "Strangér", Class: "Rogue", Role: warcraftlogs.RoleHealer, IsMain: true, MembershipId: 4, RosterIds: []int{9}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name      string
		req       CharacterCreateRequest
		overrides ResolveOverrides
	}{
		{name: "bad role", req: base, overrides: ResolveOverrides{Role: strPtr("support")}},
		{name: "blank name", req: base, overrides: ResolveOverrides{Name: strPtr("  ")}},
		{name: "blank class", req: base, overrides: ResolveOverrides{Class: strPtr("")}},
		{name: "no membership", req: BuildCharacterCreateRequest(UnknownEntry{Participant: participant("1", "X", "Mage", "")}, 0, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.req.WithOverrides(tt.overrides); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
