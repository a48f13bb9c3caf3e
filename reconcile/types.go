package reconcile

import (
	"time"

	"github.com/guildroster/roster_backend/warcraftlogs"
)

type Classification string

const (
	ClassificationPresent Classification = "present"
	ClassificationAbsent  Classification = "absent"
	ClassificationBenched Classification = "benched"
)

func (c Classification) IsValid() bool {
	switch c {
	case ClassificationPresent, ClassificationAbsent, ClassificationBenched:
		return true
	}
	return false
}

// Character is the roster side of a match. Read-only.
type Character struct {
	ID    int               `json:"id"`
	Name  string            `json:"name"`
	Class string            `json:"class"`
	Role  warcraftlogs.Role `json:"role"`
}

type MatchedEntry struct {
	Character      Character                `json:"character"`
	Participant    warcraftlogs.Participant `json:"participant"`
	Classification Classification           `json:"classification"`
	Note           string                   `json:"note"`
	BenchedReason  string                   `json:"benched_reason,omitempty"`
}

type UnknownEntry struct {
	Participant warcraftlogs.Participant `json:"participant"`
	Ignored     bool                     `json:"ignored"`
	// last resolution failure for this participant
	Error string `json:"error,omitempty"`
}

type AttendanceRecord struct {
	CharacterId   int    `json:"character_id"`
	IsPresent     bool   `json:"is_present"`
	IsBenched     bool   `json:"is_benched"`
	Note          string `json:"note,omitempty"`
	BenchedReason string `json:"benched_reason,omitempty"`
}

// Result is one reconciliation pass. Matched and Unknown partition
// Participants; AttendanceRecords is 1:1 with Matched.
type Result struct {
	Report            *warcraftlogs.Report       `json:"-"`
	Participants      []warcraftlogs.Participant `json:"participants"`
	Matched           []MatchedEntry             `json:"matched"`
	Unknown           []UnknownEntry             `json:"unknown"`
	AttendanceRecords []AttendanceRecord         `json:"attendance_records"`
}

// ReportSummary is the report metadata shown with a session.
type ReportSummary struct {
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Owner     string    `json:"owner"`
	Zone      string    `json:"zone"`
}

func summarize(r *warcraftlogs.Report) *ReportSummary {
	if r == nil {
		return nil
	}
	return &ReportSummary{
		Code:      r.Code,
		Title:     r.Title,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Owner:     r.Owner,
		Zone:      r.Zone,
	}
}

func (r *Result) clone() *Result {
	if r == nil {
		return nil
	}
	return &Result{
		Report:            r.Report,
		Participants:      append([]warcraftlogs.Participant(nil), r.Participants...),
		Matched:           append([]MatchedEntry(nil), r.Matched...),
		Unknown:           append([]UnknownEntry(nil), r.Unknown...),
		AttendanceRecords: append([]AttendanceRecord(nil), r.AttendanceRecords...),
	}
}
