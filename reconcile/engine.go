package reconcile

import (
	"strings"

	"github.com/guildroster/roster_backend/warcraftlogs"
)

type Options struct {
	// CaseInsensitiveNames compares lower-cased names.
	CaseInsensitiveNames bool
}

// Reconcile matches report participants to roster characters by exact name.
func Reconcile(report *warcraftlogs.Report, characters []Character) (*Result, error) {
	return ReconcileWith(report, characters, Options{})
}

// ReconcileWith pairs each participant, in report order, with the first
// unclaimed character of the same name. A character is claimed at most once,
// so a second participant with the same name becomes unknown.
func ReconcileWith(report *warcraftlogs.Report, characters []Character, opts Options) (*Result, error) {
	if report == nil {
		return nil, &InvalidInputError{Reason: "report is required"}
	}
	if characters == nil {
		return nil, &InvalidInputError{Reason: "characters are required"}
	}

	key := func(name string) string {
		if opts.CaseInsensitiveNames {
			return strings.ToLower(name)
		}
		return name
	}

	// roster order decides which of two same-named characters is claimed first
	available := make(map[string][]int, len(characters))
	for i, c := range characters {
		k := key(c.Name)
		available[k] = append(available[k], i)
	}

	result := &Result{
		Report:            report,
		Participants:      append([]warcraftlogs.Participant{}, report.Participants...),
		Matched:           []MatchedEntry{},
		Unknown:           []UnknownEntry{},
		AttendanceRecords: []AttendanceRecord{},
	}
	for _, p := range report.Participants {
		k := key(p.Name)
		queue := available[k]
		if len(queue) == 0 {
			result.Unknown = append(result.Unknown, UnknownEntry{Participant: p})
			continue
		}
		available[k] = queue[1:]
		result.Matched = append(result.Matched, MatchedEntry{
			Character:      characters[queue[0]],
			Participant:    p,
			Classification: ClassificationPresent,
			Note:           "present in report as " + p.Name,
		})
	}
	result.recomputeAttendanceRecords()
	return result, nil
}
