package reconcile

import (
	"strings"
	"time"
)

type EventFields struct {
	ScheduledAt      *time.Time `json:"scheduled_at"`
	RosterId         int        `json:"roster_id"`
	ScenarioSelector string     `json:"scenario_selector"`
	Title            string     `json:"title"`
	Note             string     `json:"note"`
}

type CommitRequest struct {
	ScheduledAt       time.Time          `json:"scheduled_at"`
	RosterId          int                `json:"roster_id"`
	ScenarioSelector  string             `json:"scenario_selector"`
	Title             string             `json:"title"`
	Note              string             `json:"note,omitempty"`
	Report            *ReportSummary     `json:"report,omitempty"`
	AttendanceRecords []AttendanceRecord `json:"attendance_records"`
}

type CommitOutcome struct {
	RaidId      int       `json:"raid_id"`
	CommittedAt time.Time `json:"committed_at"`
}

// Missing lists the required fields that are absent, in a stable order.
func (f EventFields) Missing() []string {
	var missing []string
	if f.ScheduledAt == nil || f.ScheduledAt.IsZero() {
		missing = append(missing, "scheduled_at")
	}
	if f.RosterId <= 0 {
		missing = append(missing, "roster_id")
	}
	if strings.TrimSpace(f.ScenarioSelector) == "" {
		missing = append(missing, "scenario_selector")
	}
	return missing
}

// BuildCommitRequest packages the current attendance records with the event
// fields. It performs no I/O; incomplete fields fail here.
func BuildCommitRequest(result *Result, fields EventFields) (*CommitRequest, error) {
	if result == nil {
		return nil, &InvalidInputError{Reason: "reconciliation result is required"}
	}
	if missing := fields.Missing(); len(missing) > 0 {
		return nil, &IncompleteEventError{Missing: missing}
	}

	title := strings.TrimSpace(fields.Title)
	if title == "" && result.Report != nil {
		title = result.Report.Title
	}
	return &CommitRequest{
		ScheduledAt:       fields.ScheduledAt.UTC(),
		RosterId:          fields.RosterId,
		ScenarioSelector:  strings.TrimSpace(fields.ScenarioSelector),
		Title:             title,
		Note:              strings.TrimSpace(fields.Note),
		Report:            summarize(result.Report),
		AttendanceRecords: append([]AttendanceRecord{}, result.AttendanceRecords...),
	}, nil
}

// PresentCount and AbsentCount feed the raid.committed event; benched counts as absent.
func (r *CommitRequest) PresentCount() int {
	n := 0
	for _, a := range r.AttendanceRecords {
		if a.IsPresent {
			n++
		}
	}
	return n
}

func (r *CommitRequest) AbsentCount() int {
	return len(r.AttendanceRecords) - r.PresentCount()
}
