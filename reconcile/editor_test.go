package reconcile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/guildroster/roster_backend/warcraftlogs"
)

func reconciled(t *testing.T) *Result {
	t.Helper()
	res, err := Reconcile(testReport(
		participant("10", "Alduin", "Warrior", warcraftlogs.RoleTank),
		participant("11", "Brightleaf", "Druid", warcraftlogs.RoleHealer),
		participant("12", "Stranger", "Rogue", warcraftlogs.RoleDPS),
	), testRoster())
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	return res
}

func assertRecordsInSync(t *testing.T, res *Result) {
	t.Helper()
	if len(res.AttendanceRecords) != len(res.Matched) {
		t.Fatalf("records = %d, matched = %d", len(res.AttendanceRecords), len(res.Matched))
	}
	for i, m := range res.Matched {
		rec := res.AttendanceRecords[i]
		if rec.CharacterId != m.Character.ID {
			t.Fatalf("record %d character = %d, want %d", i, rec.CharacterId, m.Character.ID)
		}
		if rec.IsPresent != (m.Classification == ClassificationPresent) {
			t.Fatalf("record %d is_present = %v for %s", i, rec.IsPresent, m.Classification)
		}
		if rec.IsBenched != (m.Classification == ClassificationBenched) {
			t.Fatalf("record %d is_benched = %v for %s", i, rec.IsBenched, m.Classification)
		}
		if m.Classification != ClassificationBenched && rec.BenchedReason != "" {
			t.Fatalf("record %d keeps benched reason %q while %s", i, rec.BenchedReason, m.Classification)
		}
	}
}

func TestNewMatchesStartPresent(t *testing.T) {
	res := reconciled(t)
	for _, m := range res.Matched {
		if m.Classification != ClassificationPresent {
			t.Fatalf("%s classification = %s, want present", m.Character.Name, m.Classification)
		}
	}
	assertRecordsInSync(t, res)
}

func TestSetClassificationKeepsRecordsInSync(t *testing.T) {
	res := reconciled(t)
	steps := []struct {
		index int
		c     Classification
	}{
		{0, ClassificationAbsent},
		{1, ClassificationBenched},
		{0, ClassificationPresent},
		{1, ClassificationAbsent},
	}
	for _, step := range steps {
		if err := res.SetClassification(step.index, step.c); err != nil {
			t.Fatalf("SetClassification(%d, %s) error = %v", step.index, step.c, err)
		}
		if res.Matched[step.index].Classification != step.c {
			t.Fatalf("entry %d = %s, want %s", step.index, res.Matched[step.index].Classification, step.c)
		}
		assertRecordsInSync(t, res)
	}
}

func TestSetClassificationErrors(t *testing.T) {
	res := reconciled(t)
	before := res.clone()

	if err := res.SetClassification(5, ClassificationAbsent); !errors.Is(err, ErrEntryIndexOutOfRange) {
		t.Fatalf("out of range error = %v", err)
	}
	if err := res.SetClassification(-1, ClassificationAbsent); !errors.Is(err, ErrEntryIndexOutOfRange) {
		t.Fatalf("negative index error = %v", err)
	}
	if err := res.SetClassification(0, Classification("late")); !errors.Is(err, ErrInvalidClassification) {
		t.Fatalf("invalid classification error = %v", err)
	}
	if diff := cmp.Diff(before, res); diff != "" {
		t.Fatalf("failed edits changed the result (-before +after):\n%s", diff)
	}
}

func TestBenchedReasonRoundTrip(t *testing.T) {
	res := reconciled(t)

	// ignored while not benched
	if applied, err := res.SetBenchedReason(0, "rotation"); err != nil || applied {
		t.Fatalf("SetBenchedReason() = %v, %v, want false, nil", applied, err)
	}
	if res.Matched[0].BenchedReason != "" {
		t.Fatalf("reason stored on a present entry: %q", res.Matched[0].BenchedReason)
	}

	if err := res.SetClassification(0, ClassificationBenched); err != nil {
		t.Fatalf("SetClassification() error = %v", err)
	}
	if applied, err := res.SetBenchedReason(0, "  rotation  "); err != nil || !applied {
		t.Fatalf("SetBenchedReason() = %v, %v, want true, nil", applied, err)
	}
	want := AttendanceRecord{CharacterId: 1, IsBenched: true, Note: "present in report as Alduin", BenchedReason: "rotation"}
	if diff := cmp.Diff(want, res.AttendanceRecords[0]); diff != "" {
		t.Fatalf("benched record mismatch (-want +got):\n%s", diff)
	}

	if err := res.SetClassification(0, ClassificationAbsent); err != nil {
		t.Fatalf("SetClassification() error = %v", err)
	}
	if res.Matched[0].BenchedReason != "" || res.AttendanceRecords[0].BenchedReason != "" {
		t.Fatalf("reason survived leaving benched: %+v", res.Matched[0])
	}
	if _, err := res.SetBenchedReason(9, "x"); !errors.Is(err, ErrEntryIndexOutOfRange) {
		t.Fatalf("out of range error = %v", err)
	}
}

func TestSetIgnored(t *testing.T) {
	res := reconciled(t)
	if err := res.SetIgnored(0, true); err != nil {
		t.Fatalf("SetIgnored() error = %v", err)
	}
	if !res.Unknown[0].Ignored || len(res.Unknown) != 1 {
		t.Fatalf("unknown = %+v", res.Unknown)
	}
	if err := res.SetIgnored(1, true); !errors.Is(err, ErrEntryIndexOutOfRange) {
		t.Fatalf("out of range error = %v", err)
	}
}

func TestCarryOverReplaysEditsByCharacter(t *testing.T) {
	prev := reconciled(t)
	if err := prev.SetClassification(1, ClassificationBenched); err != nil {
		t.Fatal(err)
	}
	if _, err := prev.SetBenchedReason(1, "swap"); err != nil {
		t.Fatal(err)
	}
	if err := prev.SetIgnored(0, true); err != nil {
		t.Fatal(err)
	}

	// report order changed and Cinder joined
	next, err := Reconcile(testReport(
		participant("13", "Cinder", "Mage", warcraftlogs.RoleDPS),
		participant("11", "Brightleaf", "Druid", warcraftlogs.RoleHealer),
		participant("12", "Stranger", "Rogue", warcraftlogs.RoleDPS),
		participant("10", "Alduin", "Warrior", warcraftlogs.RoleTank),
	), testRoster())
	if err != nil {
		t.Fatal(err)
	}
	if changed := next.carryOver(prev); !changed {
		t.Fatal("carryOver() = false, want true")
	}

	got := make(map[int]Classification)
	for _, m := range next.Matched {
		got[m.Character.ID] = m.Classification
	}
	want := map[int]Classification{1: ClassificationPresent, 2: ClassificationBenched, 3: ClassificationPresent}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("classifications mismatch (-want +got):\n%s", diff)
	}
	if next.Matched[1].BenchedReason != "swap" {
		t.Fatalf("benched reason = %q, want swap", next.Matched[1].BenchedReason)
	}
	if !next.Unknown[0].Ignored {
		t.Fatal("ignored flag not carried over")
	}
	assertRecordsInSync(t, next)
}
