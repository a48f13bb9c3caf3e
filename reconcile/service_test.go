package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/guildroster/roster_backend/warcraftlogs"
)

const (
	testGuild   = "0b7c2f4e-6a55-4c1e-9d0f-1f1c5a3e7b21"
	testRef     = "https://www.warcraftlogs.com/reports/aBcD1234eFgH5678#fight=last"
	testRosterN = 9
)

type fakeFetcher struct {
	mu        sync.Mutex
	report    *warcraftlogs.Report
	err       error
	calls     int
	refreshes int
	entered   chan struct{}
	release   chan struct{}
}

func (f *fakeFetcher) FetchReport(ctx context.Context, code string) (*warcraftlogs.Report, error) {
	f.mu.Lock()
	f.calls++
	entered, release := f.entered, f.release
	report, err := f.report, f.err
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
		<-release
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (f *fakeFetcher) RefreshReport(ctx context.Context, code string) (*warcraftlogs.Report, error) {
	f.mu.Lock()
	f.refreshes++
	f.mu.Unlock()
	return f.FetchReport(ctx, code)
}

type fakeRoster struct {
	mu         sync.Mutex
	characters []Character
	listErr    error
	createErr  error
	created    []CharacterCreateRequest
	nextId     int
}

func (f *fakeRoster) ListRosterCharacters(ctx context.Context, teamId int) ([]Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]Character{}, f.characters...), nil
}

func (f *fakeRoster) CreateCharacter(ctx context.Context, req CharacterCreateRequest) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextId++
	f.characters = append(f.characters, Character{ID: f.nextId, Name: req.DisplayName, Class: req.Class, Role: req.Role})
	return f.nextId, nil
}

type fakeRaids struct {
	mu       sync.Mutex
	requests []*CommitRequest
	err      error
}

func (f *fakeRaids) CreateRaid(ctx context.Context, req *CommitRequest) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return 0, f.err
	}
	return 500 + len(f.requests), nil
}

func (f *fakeRaids) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeNotifier struct {
	events []CommittedEvent
	err    error
}

func (f *fakeNotifier) RaidCommitted(ctx context.Context, event CommittedEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeLocker struct {
	err      error
	keys     []string
	released int
}

func (f *fakeLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return func() { f.released++ }, nil
}

type harness struct {
	svc      *Service
	fetcher  *fakeFetcher
	roster   *fakeRoster
	raids    *fakeRaids
	notifier *fakeNotifier
	locker   *fakeLocker
}

func newHarness() *harness {
	h := &harness{
		fetcher: &fakeFetcher{report: testReport(
			participant("10", "Alduin", "Warrior", warcraftlogs.RoleTank),
			participant("11", "Brightleaf", "Druid", warcraftlogs.RoleHealer),
			participant("12", "Stranger", "Rogue", warcraftlogs.RoleDPS),
		)},
		roster:   &fakeRoster{characters: testRoster(), nextId: 100},
		raids:    &fakeRaids{},
		notifier: &fakeNotifier{},
		locker:   &fakeLocker{},
	}
	h.svc = NewService(NewStore(time.Hour), Dependencies{
		Fetcher:   h.fetcher,
		Directory: h.roster,
		Creator:   h.roster,
		Raids:     h.raids,
		Notifier:  h.notifier,
		Locker:    h.locker,
	}, Options{})
	return h
}

func (h *harness) start(t *testing.T) View {
	t.Helper()
	view, err := h.svc.Start(context.Background(), testGuild, testRef, testRosterN)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return view
}

func completeFields() EventFields {
	at := time.Date(2024, 9, 17, 19, 30, 0, 0, time.UTC)
	return EventFields{ScheduledAt: &at, RosterId: testRosterN, ScenarioSelector: "Nerub-ar Palace Heroic"}
}

func TestServiceStartReconciles(t *testing.T) {
	h := newHarness()
	view := h.start(t)

	if view.State != StateReconciled || view.Generation != 1 {
		t.Fatalf("state/generation = %s/%d, want reconciled/1", view.State, view.Generation)
	}
	if len(view.Matched) != 2 || len(view.Unknown) != 1 || len(view.AttendanceRecords) != 2 {
		t.Fatalf("matched/unknown/records = %d/%d/%d", len(view.Matched), len(view.Unknown), len(view.AttendanceRecords))
	}
	if view.Report == nil || view.Report.Code != "aBcD1234eFgH5678" {
		t.Fatalf("report summary = %+v", view.Report)
	}
	if view.TargetRosterId != testRosterN || len(view.Pending) != 0 {
		t.Fatalf("view = %+v", view)
	}
}

func TestServiceStartValidatesInput(t *testing.T) {
	h := newHarness()
	if _, err := h.svc.Start(context.Background(), testGuild, "not a report", testRosterN); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad reference error = %v, want ErrInvalidInput", err)
	}
	if _, err := h.svc.Start(context.Background(), testGuild, testRef, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing roster error = %v, want ErrInvalidInput", err)
	}
	if n := h.svc.Store().Len(); n != 0 {
		t.Fatalf("store has %d sessions after rejected starts", n)
	}
	if h.fetcher.calls != 0 {
		t.Fatalf("fetcher called %d times", h.fetcher.calls)
	}
}

func TestServiceIngestionFailureThenRefetch(t *testing.T) {
	h := newHarness()
	h.fetcher.err = warcraftlogs.ErrReportNotFound

	view, err := h.svc.Start(context.Background(), testGuild, testRef, testRosterN)
	var ingest *IngestionFailedError
	if !errors.As(err, &ingest) || !errors.Is(err, warcraftlogs.ErrReportNotFound) {
		t.Fatalf("error = %v, want IngestionFailedError wrapping ErrReportNotFound", err)
	}
	if view.ID == "" || view.State != StateFailed || view.LastError == "" {
		t.Fatalf("view after failure = %+v", view)
	}

	if _, err := h.svc.SetClassification(testGuild, view.ID, 0, 0, "absent"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("edit on failed session error = %v, want ErrInvalidState", err)
	}

	h.fetcher.mu.Lock()
	h.fetcher.err = nil
	h.fetcher.mu.Unlock()
	view, err = h.svc.Refetch(context.Background(), testGuild, view.ID, "")
	if err != nil {
		t.Fatalf("Refetch() error = %v", err)
	}
	if view.State != StateReconciled || view.LastError != "" || len(view.Matched) != 2 {
		t.Fatalf("view after refetch = %+v", view)
	}
}

func TestServiceRosterFailureIsIngestionFailure(t *testing.T) {
	h := newHarness()
	h.roster.listErr = errors.New("db down")
	_, err := h.svc.Start(context.Background(), testGuild, testRef, testRosterN)
	var ingest *IngestionFailedError
	if !errors.As(err, &ingest) {
		t.Fatalf("error = %v, want IngestionFailedError", err)
	}
}

func TestServiceEditsRequireCurrentGeneration(t *testing.T) {
	h := newHarness()
	view := h.start(t)

	if _, err := h.svc.SetClassification(testGuild, view.ID, view.Generation+1, 0, "absent"); !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("stale edit error = %v", err)
	}
	view, err := h.svc.SetClassification(testGuild, view.ID, view.Generation, 1, "Benched")
	if err != nil {
		t.Fatalf("SetClassification() error = %v", err)
	}
	if view.State != StateEditing || view.Matched[1].Classification != ClassificationBenched {
		t.Fatalf("view after edit = %+v", view)
	}
	view, err = h.svc.SetBenchedReason(testGuild, view.ID, view.Generation, 1, "loot council")
	if err != nil {
		t.Fatalf("SetBenchedReason() error = %v", err)
	}

	oldGen := view.Generation
	view, err = h.svc.Refetch(context.Background(), testGuild, view.ID, "")
	if err != nil {
		t.Fatalf("Refetch() error = %v", err)
	}
	if view.Generation != oldGen+1 || view.State != StateEditing {
		t.Fatalf("generation/state after refetch = %d/%s", view.Generation, view.State)
	}
	if m := view.Matched[1]; m.Classification != ClassificationBenched || m.BenchedReason != "loot council" {
		t.Fatalf("edit lost on refetch: %+v", m)
	}
	if _, err := h.svc.SetClassification(testGuild, view.ID, oldGen, 0, "absent"); !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("edit against replaced result error = %v", err)
	}
	if _, err := h.svc.SetClassification(testGuild, view.ID, view.Generation, 0, "late"); !errors.Is(err, ErrInvalidClassification) {
		t.Fatalf("invalid classification error = %v", err)
	}
}

func TestServiceIgnoreUnknown(t *testing.T) {
	h := newHarness()
	view := h.start(t)
	view, err := h.svc.IgnoreUnknown(testGuild, view.ID, view.Generation, 0, true)
	if err != nil {
		t.Fatalf("IgnoreUnknown() error = %v", err)
	}
	if !view.Unknown[0].Ignored || view.State != StateEditing {
		t.Fatalf("view = %+v", view)
	}
}

func TestServiceResolveCreatesCharacter(t *testing.T) {
	h := newHarness()
	view := h.start(t)
	view, err := h.svc.SetClassification(testGuild, view.ID, view.Generation, 0, "absent")
	if err != nil {
		t.Fatal(err)
	}

	view, err = h.svc.Resolve(context.Background(), testGuild, view.ID, view.Generation, 0, ResolveInput{MembershipId: 5})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := CharacterCreateRequest{DisplayName: "Stranger", Class: "Rogue", Role: warcraftlogs.RoleDPS, MembershipId: 5, RosterIds: []int{testRosterN}}
	if diff := cmp.Diff([]CharacterCreateRequest{want}, h.roster.created); diff != "" {
		t.Fatalf("create request mismatch (-want +got):\n%s", diff)
	}
	if len(view.Unknown) != 0 || len(view.Matched) != 3 || len(view.AttendanceRecords) != 3 {
		t.Fatalf("after resolve matched/unknown = %d/%d", len(view.Matched), len(view.Unknown))
	}
	if view.Matched[2].Character.ID != 101 || view.Matched[2].Classification != ClassificationPresent {
		t.Fatalf("resolved entry = %+v", view.Matched[2])
	}
	if view.Matched[0].Classification != ClassificationAbsent {
		t.Fatalf("edit lost on resolve: %+v", view.Matched[0])
	}
	if view.Generation != 2 || view.State != StateEditing {
		t.Fatalf("generation/state = %d/%s", view.Generation, view.State)
	}
}

func TestServiceResolveFailureKeepsUnknown(t *testing.T) {
	h := newHarness()
	h.roster.createErr = fmt.Errorf("%w: duplicate name", ErrRejected)
	view := h.start(t)

	view, err := h.svc.Resolve(context.Background(), testGuild, view.ID, view.Generation, 0, ResolveInput{MembershipId: 5})
	var resolveErr *ResolutionFailedError
	if !errors.As(err, &resolveErr) || resolveErr.ParticipantName != "Stranger" {
		t.Fatalf("error = %v, want ResolutionFailedError for Stranger", err)
	}
	if len(view.Unknown) != 1 || view.Unknown[0].Error == "" {
		t.Fatalf("unknown after failure = %+v", view.Unknown)
	}
	if view.Generation != 1 || view.State != StateEditing || len(view.Pending) != 0 {
		t.Fatalf("view after failure = %+v", view)
	}

	// bad overrides fail before any call
	before := len(h.roster.created)
	_, err = h.svc.Resolve(context.Background(), testGuild, view.ID, view.Generation, 0, ResolveInput{})
	if !errors.As(err, &resolveErr) || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing membership error = %v", err)
	}
	if len(h.roster.created) != before {
		t.Fatal("invalid request reached the character store")
	}
	if _, err := h.svc.Resolve(context.Background(), testGuild, view.ID, view.Generation, 3, ResolveInput{MembershipId: 5}); !errors.Is(err, ErrEntryIndexOutOfRange) {
		t.Fatalf("out of range error = %v", err)
	}
}

func TestServiceCommitIncompleteMakesNoCall(t *testing.T) {
	h := newHarness()
	view := h.start(t)

	view, err := h.svc.Commit(context.Background(), testGuild, view.ID, EventFields{RosterId: testRosterN})
	var incomplete *IncompleteEventError
	if !errors.As(err, &incomplete) {
		t.Fatalf("error = %v, want IncompleteEventError", err)
	}
	if diff := cmp.Diff([]string{"scheduled_at", "scenario_selector"}, incomplete.Missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
	if h.raids.calls() != 0 || len(h.locker.keys) != 0 {
		t.Fatalf("raid calls = %d, locks = %d, want none", h.raids.calls(), len(h.locker.keys))
	}
	if view.State != StateReconciled {
		t.Fatalf("state = %s, want reconciled", view.State)
	}
}

func TestServiceCommitFailureKeepsClassifications(t *testing.T) {
	h := newHarness()
	view := h.start(t)
	view, err := h.svc.SetClassification(testGuild, view.ID, view.Generation, 1, "benched")
	if err != nil {
		t.Fatal(err)
	}
	edited := view.AttendanceRecords

	h.raids.err = fmt.Errorf("%w: scenario not found", ErrRejected)
	view, err = h.svc.Commit(context.Background(), testGuild, view.ID, completeFields())
	var commitErr *CommitFailedError
	if !errors.As(err, &commitErr) || !commitErr.Rejected() {
		t.Fatalf("error = %v, want rejected CommitFailedError", err)
	}
	if view.State != StateEditing || view.LastError == "" {
		t.Fatalf("view after failed commit = %+v", view)
	}
	if diff := cmp.Diff(edited, view.AttendanceRecords); diff != "" {
		t.Fatalf("records changed by failed commit (-before +after):\n%s", diff)
	}
	if h.locker.released != 1 {
		t.Fatalf("lock released %d times, want 1", h.locker.released)
	}

	h.raids.err = errors.New("connection refused")
	_, err = h.svc.Commit(context.Background(), testGuild, view.ID, completeFields())
	if !errors.As(err, &commitErr) || commitErr.Rejected() {
		t.Fatalf("error = %v, want unreachable CommitFailedError", err)
	}

	h.raids.err = nil
	view, err = h.svc.Commit(context.Background(), testGuild, view.ID, completeFields())
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if view.State != StateDone || view.Outcome == nil || view.Outcome.RaidId != 503 {
		t.Fatalf("view after commit = %+v", view)
	}
	last := h.raids.requests[len(h.raids.requests)-1]
	if diff := cmp.Diff(edited, last.AttendanceRecords); diff != "" {
		t.Fatalf("committed records mismatch (-want +got):\n%s", diff)
	}
	if len(h.notifier.events) != 1 || h.notifier.events[0].RaidId != 503 {
		t.Fatalf("notifier events = %+v", h.notifier.events)
	}
}

func TestServiceNotifierErrorDoesNotFailCommit(t *testing.T) {
	h := newHarness()
	h.notifier.err = errors.New("pubsub down")
	view := h.start(t)
	view, err := h.svc.Commit(context.Background(), testGuild, view.ID, completeFields())
	if err != nil || view.State != StateDone {
		t.Fatalf("Commit() = %s, %v", view.State, err)
	}
}

func TestServiceCommitLockHeld(t *testing.T) {
	h := newHarness()
	h.locker.err = ErrRequestOutstanding
	view := h.start(t)

	view, err := h.svc.Commit(context.Background(), testGuild, view.ID, completeFields())
	if !errors.Is(err, ErrRequestOutstanding) {
		t.Fatalf("error = %v, want ErrRequestOutstanding", err)
	}
	if h.raids.calls() != 0 {
		t.Fatalf("raid created while lock was held")
	}
	want := fmt.Sprintf("lock:raid-commit:%s:%d:%d", testGuild, testRosterN, completeFields().ScheduledAt.Unix())
	if diff := cmp.Diff([]string{want}, h.locker.keys); diff != "" {
		t.Fatalf("lock keys mismatch (-want +got):\n%s", diff)
	}
	if view.State != StateEditing {
		t.Fatalf("state = %s, want editing", view.State)
	}
}

func TestServiceDoneSessionIsClosed(t *testing.T) {
	h := newHarness()
	view := h.start(t)
	view, err := h.svc.Commit(context.Background(), testGuild, view.ID, completeFields())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.svc.SetClassification(testGuild, view.ID, view.Generation, 0, "absent"); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("edit after commit error = %v", err)
	}
	if _, err := h.svc.Commit(context.Background(), testGuild, view.ID, completeFields()); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("second commit error = %v", err)
	}
	if _, err := h.svc.Refetch(context.Background(), testGuild, view.ID, ""); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("refetch after commit error = %v", err)
	}
	if h.raids.calls() != 1 {
		t.Fatalf("raid calls = %d, want 1", h.raids.calls())
	}
}

func TestServiceScopesSessionsByGuild(t *testing.T) {
	h := newHarness()
	view := h.start(t)
	other := "9a1e5a63-3f0d-4a43-8d63-8c2a3b2a9c10"

	if _, err := h.svc.Get(other, view.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("cross-guild get error = %v", err)
	}
	if err := h.svc.Discard(other, view.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("cross-guild discard error = %v", err)
	}
	if err := h.svc.LinkExisting(testGuild, view.ID); !errors.Is(err, ErrLinkNotSupported) {
		t.Fatalf("link error = %v", err)
	}
	if err := h.svc.Discard(testGuild, view.ID); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}
	if _, err := h.svc.Get(testGuild, view.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("get after discard error = %v", err)
	}
}

func TestServiceRejectsSecondFetchWhileOneIsInFlight(t *testing.T) {
	h := newHarness()
	h.fetcher.entered = make(chan struct{})
	h.fetcher.release = make(chan struct{})

	type startResult struct {
		view View
		err  error
	}
	done := make(chan startResult, 1)
	go func() {
		view, err := h.svc.Start(context.Background(), testGuild, testRef, testRosterN)
		done <- startResult{view, err}
	}()
	<-h.fetcher.entered

	var id string
	h.svc.store.mu.RLock()
	for k := range h.svc.store.sessions {
		id = k
	}
	h.svc.store.mu.RUnlock()

	if _, err := h.svc.Refetch(context.Background(), testGuild, id, ""); !errors.Is(err, ErrRequestOutstanding) {
		t.Fatalf("second fetch error = %v, want ErrRequestOutstanding", err)
	}
	if _, err := h.svc.Commit(context.Background(), testGuild, id, completeFields()); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("commit during fetch error = %v, want ErrSessionBusy", err)
	}
	view, _ := h.svc.Get(testGuild, id)
	if view.State != StateFetching || len(view.Pending) != 1 || view.Pending[0] != "fetch" {
		t.Fatalf("view during fetch = %+v", view)
	}

	close(h.fetcher.release)
	res := <-done
	if res.err != nil || res.view.State != StateReconciled {
		t.Fatalf("Start() = %s, %v", res.view.State, res.err)
	}
}

func TestStoreSweepDropsIdleSessions(t *testing.T) {
	clock := time.Date(2024, 9, 17, 12, 0, 0, 0, time.UTC)
	st := NewStore(30 * time.Minute)
	st.now = func() time.Time { return clock }

	stale := st.create(testGuild, 1, testRef, Options{})
	clock = clock.Add(20 * time.Minute)
	fresh := st.create(testGuild, 1, testRef, Options{})
	busy := st.create(testGuild, 1, testRef, Options{})
	if err := busy.beginFetch(testRef, "aBcD1234eFgH5678"); err != nil {
		t.Fatal(err)
	}

	clock = clock.Add(15 * time.Minute)
	if n := st.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	if _, err := st.Get(testGuild, stale.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("stale session still present: %v", err)
	}
	clock = clock.Add(time.Hour)
	if n := st.Sweep(); n != 1 {
		t.Fatalf("second Sweep() = %d, want 1 (in-flight session kept)", n)
	}
	if _, err := st.Get(testGuild, fresh.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("fresh session survived: %v", err)
	}
	if _, err := st.Get(testGuild, busy.ID()); err != nil {
		t.Fatalf("busy session swept: %v", err)
	}
}

func TestServiceCommitRejectsOtherRoster(t *testing.T) {
	h := newHarness()
	view := h.start(t)

	fields := completeFields()
	fields.RosterId = testRosterN + 1
	view, err := h.svc.Commit(context.Background(), testGuild, view.ID, fields)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
	if h.raids.calls() != 0 || len(h.locker.keys) != 0 {
		t.Fatalf("raid calls = %d, locks = %d, want none", h.raids.calls(), len(h.locker.keys))
	}
	if view.State != StateReconciled || len(view.Pending) != 0 {
		t.Fatalf("view after rejected commit = %+v", view)
	}

	if _, err := h.svc.Commit(context.Background(), testGuild, view.ID, completeFields()); err != nil {
		t.Fatalf("Commit() on the import roster error = %v", err)
	}
	if got := h.raids.requests[0].RosterId; got != testRosterN {
		t.Fatalf("committed roster = %d, want %d", got, testRosterN)
	}
}

func TestServiceBenchedReasonOnPresentEntryChangesNothing(t *testing.T) {
	h := newHarness()
	view := h.start(t)

	after, err := h.svc.SetBenchedReason(testGuild, view.ID, view.Generation, 0, "gear")
	if err != nil {
		t.Fatalf("SetBenchedReason() error = %v", err)
	}
	if after.State != StateReconciled {
		t.Fatalf("state = %s, want reconciled", after.State)
	}
	if !after.UpdatedAt.Equal(view.UpdatedAt) {
		t.Fatalf("updated_at moved from %v to %v", view.UpdatedAt, after.UpdatedAt)
	}
	if diff := cmp.Diff(view.Matched, after.Matched); diff != "" {
		t.Fatalf("matched changed (-before +after):\n%s", diff)
	}
}

func TestServiceRefetchReadsReportUpstream(t *testing.T) {
	h := newHarness()
	view := h.start(t)
	if h.fetcher.refreshes != 0 {
		t.Fatalf("Start() bypassed the report cache")
	}

	h.fetcher.mu.Lock()
	h.fetcher.report = testReport(
		participant("10", "Alduin", "Warrior", warcraftlogs.RoleTank),
		participant("11", "Brightleaf", "Druid", warcraftlogs.RoleHealer),
		participant("12", "Stranger", "Rogue", warcraftlogs.RoleDPS),
		participant("13", "Cinder", "Mage", warcraftlogs.RoleDPS),
	)
	h.fetcher.mu.Unlock()

	view, err := h.svc.Refetch(context.Background(), testGuild, view.ID, "")
	if err != nil {
		t.Fatalf("Refetch() error = %v", err)
	}
	if h.fetcher.refreshes != 1 {
		t.Fatalf("refreshes = %d, want 1", h.fetcher.refreshes)
	}
	if len(view.Matched) != 3 {
		t.Fatalf("matched after refetch = %d, want 3", len(view.Matched))
	}
}
