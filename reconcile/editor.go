package reconcile

import "strings"

// SetClassification overrides a matched entry's classification. Leaving
// benched drops the benched reason.
func (r *Result) SetClassification(index int, c Classification) error {
	if index < 0 || index >= len(r.Matched) {
		return ErrEntryIndexOutOfRange
	}
	if !c.IsValid() {
		return ErrInvalidClassification
	}
	entry := &r.Matched[index]
	entry.Classification = c
	if c != ClassificationBenched {
		entry.BenchedReason = ""
	}
	r.recomputeAttendanceRecords()
	return nil
}

// SetBenchedReason is a no-op unless the entry is benched; applied reports
// whether the reason was stored.
func (r *Result) SetBenchedReason(index int, text string) (applied bool, err error) {
	if index < 0 || index >= len(r.Matched) {
		return false, ErrEntryIndexOutOfRange
	}
	entry := &r.Matched[index]
	if entry.Classification != ClassificationBenched {
		return false, nil
	}
	entry.BenchedReason = strings.TrimSpace(text)
	r.recomputeAttendanceRecords()
	return true, nil
}

// SetIgnored marks an unknown entry as dismissed by the operator. The entry
// stays in the unknown list.
func (r *Result) SetIgnored(index int, ignored bool) error {
	if index < 0 || index >= len(r.Unknown) {
		return ErrEntryIndexOutOfRange
	}
	r.Unknown[index].Ignored = ignored
	return nil
}

func (r *Result) recomputeAttendanceRecords() {
	records := make([]AttendanceRecord, len(r.Matched))
	for i, m := range r.Matched {
		records[i] = AttendanceRecord{
			CharacterId: m.Character.ID,
			IsPresent:   m.Classification == ClassificationPresent,
			IsBenched:   m.Classification == ClassificationBenched,
			Note:        m.Note,
		}
		if m.Classification == ClassificationBenched {
			records[i].BenchedReason = m.BenchedReason
		}
	}
	r.AttendanceRecords = records
}

// carryOver replays operator edits from prev onto r, keyed by character id.
// It reports whether anything differed from the defaults.
func (r *Result) carryOver(prev *Result) bool {
	if prev == nil {
		return false
	}
	type edit struct {
		classification Classification
		reason         string
	}
	edits := make(map[int]edit, len(prev.Matched))
	for _, m := range prev.Matched {
		edits[m.Character.ID] = edit{m.Classification, m.BenchedReason}
	}
	ignored := make(map[string]bool)
	for _, u := range prev.Unknown {
		if u.Ignored {
			ignored[u.Participant.ExternalId] = true
		}
	}

	changed := false
	for i := range r.Matched {
		e, ok := edits[r.Matched[i].Character.ID]
		if !ok || e.classification == ClassificationPresent {
			continue
		}
		r.Matched[i].Classification = e.classification
		if e.classification == ClassificationBenched {
			r.Matched[i].BenchedReason = e.reason
		}
		changed = true
	}
	for i := range r.Unknown {
		if ignored[r.Unknown[i].Participant.ExternalId] {
			r.Unknown[i].Ignored = true
			changed = true
		}
	}
	r.recomputeAttendanceRecords()
	return changed
}
