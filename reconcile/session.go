package reconcile

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/guildroster/roster_backend/warcraftlogs"
)

type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateReconciled State = "reconciled"
	StateEditing    State = "editing"
	StateResolving  State = "resolving"
	StateCommitting State = "committing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

type requestKind string

const (
	requestFetch   requestKind = "fetch"
	requestResolve requestKind = "resolve"
	requestCommit  requestKind = "commit"
)

// Session owns one import from report reference to committed raid.
// All fields are guarded by mu; network calls happen outside of it.
type Session struct {
	mu           sync.Mutex
	id           string
	guildId      string
	teamId       int
	reference    string
	reportCode   string
	state        State
	generation   int
	result       *Result
	lastError    string
	outcome      *CommitOutcome
	inFlight     map[requestKind]bool
	options      Options
	createdAt    time.Time
	lastActivity time.Time
	now          func() time.Time
}

// View is a copy of the session safe to serialize.
type View struct {
	ID                string                     `json:"id"`
	State             State                      `json:"state"`
	Generation        int                        `json:"generation"`
	TargetRosterId    int                        `json:"target_roster_id"`
	ReportReference   string                     `json:"report_reference"`
	Report            *ReportSummary             `json:"report"`
	Participants      []warcraftlogs.Participant `json:"participants"`
	Matched           []MatchedEntry             `json:"matched"`
	Unknown           []UnknownEntry             `json:"unknown"`
	AttendanceRecords []AttendanceRecord         `json:"attendance_records"`
	LastError         string                     `json:"last_error,omitempty"`
	Outcome           *CommitOutcome             `json:"outcome,omitempty"`
	Pending           []string                   `json:"pending"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}

func newSession(id string, guildId string, teamId int, reference string, opts Options, now func() time.Time) *Session {
	t := now()
	return &Session{
		id:           id,
		guildId:      guildId,
		teamId:       teamId,
		reference:    reference,
		state:        StateIdle,
		inFlight:     make(map[requestKind]bool),
		options:      opts,
		createdAt:    t,
		lastActivity: t,
		now:          now,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:              s.id,
		State:           s.state,
		Generation:      s.generation,
		TargetRosterId:  s.teamId,
		ReportReference: s.reference,
		LastError:       s.lastError,
		Pending:         []string{},
		CreatedAt:       s.createdAt,
		UpdatedAt:       s.lastActivity,
	}
	if s.outcome != nil {
		outcome := *s.outcome
		v.Outcome = &outcome
	}
	for kind, busy := range s.inFlight {
		if busy {
			v.Pending = append(v.Pending, string(kind))
		}
	}
	sort.Strings(v.Pending)
	if res := s.result.clone(); res != nil {
		v.Report = summarize(res.Report)
		v.Participants = res.Participants
		v.Matched = res.Matched
		v.Unknown = res.Unknown
		v.AttendanceRecords = res.AttendanceRecords
	}
	return v
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Session) touch() {
	s.lastActivity = s.now()
}

// idle reports whether nothing is in flight and the session has not been
// used since before cutoff.
func (s *Session) idle(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, busy := range s.inFlight {
		if busy {
			return false
		}
	}
	return s.lastActivity.Before(cutoff)
}

// replaceResult supersedes the current result. Edits made against the old
// generation are rejected from here on.
func (s *Session) replaceResult(res *Result, edited bool) {
	s.result = res
	s.generation++
	if edited {
		s.state = StateEditing
	} else {
		s.state = StateReconciled
	}
}

/* fetch */

func (s *Session) beginFetch(reference string, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[requestFetch] {
		return ErrRequestOutstanding
	}
	switch s.state {
	case StateResolving, StateCommitting, StateDone:
		return ErrSessionBusy
	}
	s.inFlight[requestFetch] = true
	s.state = StateFetching
	s.reference = reference
	s.reportCode = code
	s.lastError = ""
	s.touch()
	return nil
}

func (s *Session) finishFetch(report *warcraftlogs.Report, characters []Character, fetchErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, requestFetch)
	s.touch()

	if fetchErr != nil {
		s.state = StateFailed
		s.lastError = fetchErr.Error()
		return fetchErr
	}
	res, err := ReconcileWith(report, characters, s.options)
	if err != nil {
		s.state = StateFailed
		s.lastError = err.Error()
		return err
	}
	s.replaceResult(res, res.carryOver(s.result))
	return nil
}

/* edits */

func (s *Session) checkEditable(generation int) error {
	switch s.state {
	case StateReconciled, StateEditing, StateResolving:
	case StateFetching, StateCommitting, StateDone:
		return ErrSessionBusy
	default:
		return ErrInvalidState
	}
	if generation != s.generation {
		return ErrStaleGeneration
	}
	return nil
}

func (s *Session) markEdited() {
	if s.state == StateReconciled {
		s.state = StateEditing
	}
	s.touch()
}

func (s *Session) SetClassification(generation int, index int, c Classification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEditable(generation); err != nil {
		return err
	}
	if err := s.result.SetClassification(index, c); err != nil {
		return err
	}
	s.markEdited()
	return nil
}

func (s *Session) SetBenchedReason(generation int, index int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEditable(generation); err != nil {
		return err
	}
	applied, err := s.result.SetBenchedReason(index, text)
	if err != nil {
		return err
	}
	if applied {
		s.markEdited()
	}
	return nil
}

func (s *Session) IgnoreUnknown(generation int, index int, ignored bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEditable(generation); err != nil {
		return err
	}
	if err := s.result.SetIgnored(index, ignored); err != nil {
		return err
	}
	s.markEdited()
	return nil
}

/* resolve */

func (s *Session) beginResolve(generation int, index int) (UnknownEntry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[requestResolve] {
		return UnknownEntry{}, 0, ErrRequestOutstanding
	}
	switch s.state {
	case StateReconciled, StateEditing:
	case StateFetching, StateCommitting, StateDone:
		return UnknownEntry{}, 0, ErrSessionBusy
	default:
		return UnknownEntry{}, 0, ErrInvalidState
	}
	if generation != s.generation {
		return UnknownEntry{}, 0, ErrStaleGeneration
	}
	if index < 0 || index >= len(s.result.Unknown) {
		return UnknownEntry{}, 0, ErrEntryIndexOutOfRange
	}

	s.result.Unknown[index].Error = ""
	entry := s.result.Unknown[index]
	s.inFlight[requestResolve] = true
	s.state = StateResolving
	s.touch()
	return entry, s.teamId, nil
}

// failResolve leaves the participant unknown with the message attached to it.
func (s *Session) failResolve(externalId string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, requestResolve)
	s.state = StateEditing
	for i := range s.result.Unknown {
		if s.result.Unknown[i].Participant.ExternalId == externalId {
			s.result.Unknown[i].Error = message
			break
		}
	}
	s.touch()
}

// finishResolve rebuilds the result from the reloaded roster and replays edits.
func (s *Session) finishResolve(characters []Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, requestResolve)
	s.touch()

	res, err := ReconcileWith(s.result.Report, characters, s.options)
	if err != nil {
		s.state = StateEditing
		s.lastError = err.Error()
		return err
	}
	s.replaceResult(res, res.carryOver(s.result))
	return nil
}

/* commit */

func (s *Session) beginCommit(fields EventFields) (*CommitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[requestCommit] {
		return nil, ErrRequestOutstanding
	}
	switch s.state {
	case StateReconciled, StateEditing:
	case StateFetching, StateResolving, StateDone:
		return nil, ErrSessionBusy
	default:
		return nil, ErrInvalidState
	}
	// attendance rows belong to the roster the session was reconciled against
	if fields.RosterId > 0 && fields.RosterId != s.teamId {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("roster_id %d does not match the import roster %d", fields.RosterId, s.teamId)}
	}
	req, err := BuildCommitRequest(s.result, fields)
	if err != nil {
		return nil, err
	}
	s.inFlight[requestCommit] = true
	s.state = StateCommitting
	s.lastError = ""
	s.touch()
	return req, nil
}

// failCommit returns to editing; classifications are untouched.
func (s *Session) failCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, requestCommit)
	s.state = StateEditing
	s.lastError = err.Error()
	s.touch()
}

func (s *Session) finishCommit(raidId int) CommitOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, requestCommit)
	s.state = StateDone
	s.outcome = &CommitOutcome{RaidId: raidId, CommittedAt: s.now()}
	s.touch()
	return *s.outcome
}
