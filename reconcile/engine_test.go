package reconcile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/guildroster/roster_backend/warcraftlogs"
)

func participant(id, name, class string, role warcraftlogs.Role) warcraftlogs.Participant {
	return warcraftlogs.Participant{ExternalId: id, Name: name, Class: class, Role: role}
}

func testReport(participants ...warcraftlogs.Participant) *warcraftlogs.Report {
	return &warcraftlogs.Report{Code: "aBcD1234eFgH5678", Title: "Tuesday raid", Zone: "Nerub-ar Palace", Participants: participants}
}

func testRoster() []Character {
	return []Character{
		{ID: 1, Name: "Alduin", Class: "Warrior", Role: warcraftlogs.RoleTank},
		{ID: 2, Name: "Brightleaf", Class: "Druid", Role: warcraftlogs.RoleHealer},
		{ID: 3, Name: "Cinder", Class: "Mage", Role: warcraftlogs.RoleDPS},
	}
}

func TestReconcilePartitionsParticipants(t *testing.T) {
	report := testReport(
		participant("10", "Alduin", "Warrior", warcraftlogs.RoleTank),
		participant("11", "Stranger", "Rogue", warcraftlogs.RoleDPS),
		participant("12", "Cinder", "Mage", warcraftlogs.RoleDPS),
	)
	res, err := Reconcile(report, testRoster())
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if got, want := len(res.Matched)+len(res.Unknown), len(report.Participants); got != want {
		t.Fatalf("matched+unknown = %d, want %d", got, want)
	}
	seen := make(map[string]int)
	for _, m := range res.Matched {
		seen[m.Participant.ExternalId]++
	}
	for _, u := range res.Unknown {
		seen[u.Participant.ExternalId]++
	}
	for _, p := range report.Participants {
		if seen[p.ExternalId] != 1 {
			t.Fatalf("participant %s appears %d times, want 1", p.Name, seen[p.ExternalId])
		}
	}

	wantMatched := []MatchedEntry{
		{Character: testRoster()[0], Participant: report.Participants[0], Classification: ClassificationPresent, Note: "present in report as Alduin"},
		{Character: testRoster()[2], Participant: report.Participants[2], Classification: ClassificationPresent, Note: "present in report as Cinder"},
	}
	if diff := cmp.Diff(wantMatched, res.Matched); diff != "" {
		t.Fatalf("matched mismatch (-want +got):\n%s", diff)
	}
	wantUnknown := []UnknownEntry{{Participant: report.Participants[1]}}
	if diff := cmp.Diff(wantUnknown, res.Unknown); diff != "" {
		t.Fatalf("unknown mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileIsDeterministic(t *testing.T) {
	report := testReport(
		participant("10", "Cinder", "Mage", warcraftlogs.RoleDPS),
		participant("11", "Alduin", "Warrior", warcraftlogs.RoleTank),
		participant("12", "Nobody", "Priest", warcraftlogs.RoleHealer),
	)
	first, err := Reconcile(report, testRoster())
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Reconcile(report, testRoster())
		if err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestReconcileNameMatching(t *testing.T) {
	tests := []struct {
		name        string
		participant string
		opts        Options
		wantMatched bool
	}{
		{name: "exact", participant: "Brightleaf", wantMatched: true},
		{name: "case differs", participant: "brightleaf", wantMatched: false},
		{name: "case differs with option", participant: "BRIGHTLEAF", opts: Options{CaseInsensitiveNames: true}, wantMatched: true},
		{name: "trailing realm is not stripped", participant: "Brightleaf-Draenor", wantMatched: false},
		{name: "no character", participant: "Zed", wantMatched: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ReconcileWith(testReport(participant("1", tt.participant, "Druid", warcraftlogs.RoleHealer)), testRoster(), tt.opts)
			if err != nil {
				t.Fatalf("ReconcileWith() error = %v", err)
			}
			if got := len(res.Matched) == 1; got != tt.wantMatched {
				t.Fatalf("matched = %v, want %v (result %+v)", got, tt.wantMatched, res)
			}
			if tt.wantMatched && res.Matched[0].Character.ID != 2 {
				t.Fatalf("matched character = %d, want 2", res.Matched[0].Character.ID)
			}
		})
	}
}

func TestReconcileDuplicateNameFirstWins(t *testing.T) {
	report := testReport(
		participant("20", "Alduin", "Warrior", warcraftlogs.RoleTank),
		participant("21", "Alduin", "Warrior", warcraftlogs.RoleDPS),
	)
	res, err := Reconcile(report, testRoster())
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(res.Matched) != 1 || res.Matched[0].Participant.ExternalId != "20" {
		t.Fatalf("matched = %+v, want only participant 20", res.Matched)
	}
	if len(res.Unknown) != 1 || res.Unknown[0].Participant.ExternalId != "21" {
		t.Fatalf("unknown = %+v, want only participant 21", res.Unknown)
	}
}

func TestReconcileSameNamedCharactersClaimedInRosterOrder(t *testing.T) {
	roster := []Character{
		{ID: 7, Name: "Twin", Class: "Hunter"},
		{ID: 8, Name: "Twin", Class: "Hunter"},
	}
	report := testReport(participant("1", "Twin", "Hunter", ""), participant("2", "Twin", "Hunter", ""))
	res, err := Reconcile(report, roster)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	var ids []int
	for _, m := range res.Matched {
		ids = append(ids, m.Character.ID)
	}
	if diff := cmp.Diff([]int{7, 8}, ids); diff != "" {
		t.Fatalf("claimed ids mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileEmptyInputs(t *testing.T) {
	res, err := Reconcile(testReport(participant("1", "Alduin", "Warrior", "")), []Character{})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(res.Matched) != 0 || len(res.Unknown) != 1 {
		t.Fatalf("empty roster: matched=%d unknown=%d", len(res.Matched), len(res.Unknown))
	}

	res, err = Reconcile(testReport(), testRoster())
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(res.Matched) != 0 || len(res.Unknown) != 0 || len(res.AttendanceRecords) != 0 {
		t.Fatalf("empty report produced entries: %+v", res)
	}
}

func TestReconcileRejectsMissingInputs(t *testing.T) {
	if _, err := Reconcile(nil, testRoster()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil report error = %v, want ErrInvalidInput", err)
	}
	if _, err := Reconcile(testReport(), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil characters error = %v, want ErrInvalidInput", err)
	}
}
