package utils

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	if diff := cmp.Diff([]int{3, 1, 2}, got); diff != "" {
		t.Fatalf("UniqueSlice mismatch (-want +got):\n%s", diff)
	}
	if got := UniqueSlice([]string{}); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestParseDateTime(t *testing.T) {
	want := time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC)
	cases := []string{
		"2024-03-05 20:00",
		"2024-03-05T20:00:00Z",
		"03/05/2024 20:00",
	}
	for _, c := range cases {
		got, err := ParseDateTime(c, nil)
		if err != nil {
			t.Fatalf("ParseDateTime(%q) error: %v", c, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDateTime(%q) = %v, want %v", c, got, want)
		}
	}
	if _, err := ParseDateTime("   ", nil); err == nil {
		t.Fatalf("expected error for blank input")
	}
	if _, err := ParseDateTime("not a date at all", nil); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange("", "2024-01-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from != nil || to == nil {
		t.Fatalf("expected only to to be set, got from=%v to=%v", from, to)
	}
	if _, _, err := ParseDateRange("2024-02-01", "2024-01-01"); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}

func TestSortClause(t *testing.T) {
	allowed := map[string]string{"name": "name", "created_at": "created_at"}
	cases := []struct {
		in   string
		want string
	}{
		{"name", "name ASC"},
		{"-created_at", "created_at DESC"},
		{"password", "id ASC"},
		{"", "id ASC"},
	}
	for _, c := range cases {
		if got := SortClause(c.in, allowed, "id ASC"); got != c.want {
			t.Fatalf("SortClause(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDereferencePtr(t *testing.T) {
	if DereferencePtr[bool](nil) {
		t.Fatalf("nil pointer should give false")
	}
	if !DereferencePtr(NewTrue()) {
		t.Fatalf("NewTrue should give true")
	}
}
