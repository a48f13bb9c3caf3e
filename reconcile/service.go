package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/utils"
	"github.com/guildroster/roster_backend/warcraftlogs"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type ReportFetcher interface {
	FetchReport(ctx context.Context, code string) (*warcraftlogs.Report, error)
}

// ReportRefresher is implemented by fetchers that cache; Refetch uses it to
// read the report upstream again.
type ReportRefresher interface {
	RefreshReport(ctx context.Context, code string) (*warcraftlogs.Report, error)
}

// CharacterDirectory lists the active characters of a roster.
type CharacterDirectory interface {
	ListRosterCharacters(ctx context.Context, teamId int) ([]Character, error)
}

type CharacterCreator interface {
	CreateCharacter(ctx context.Context, req CharacterCreateRequest) (int, error)
}

// RaidCreator persists a raid with its attendance in one call.
type RaidCreator interface {
	CreateRaid(ctx context.Context, req *CommitRequest) (int, error)
}

type CommittedEvent struct {
	GuildId   string
	SessionId string
	RaidId    int
	Request   *CommitRequest
}

type Notifier interface {
	RaidCommitted(ctx context.Context, event CommittedEvent) error
}

// CommitLocker serializes commits of the same raid across replicas.
// Obtain returns ErrRequestOutstanding when someone else holds key.
type CommitLocker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type Dependencies struct {
	Fetcher   ReportFetcher
	Directory CharacterDirectory
	Creator   CharacterCreator
	Raids     RaidCreator
	// optional
	Notifier Notifier
	Locker   CommitLocker
}

type Service struct {
	store   *Store
	deps    Dependencies
	options Options
	logger  *logrus.Logger
	tracer  trace.Tracer
}

func NewService(store *Store, deps Dependencies, opts Options) *Service {
	return &Service{
		store:   store,
		deps:    deps,
		options: opts,
		logger:  config.GetLogger(),
		tracer:  otel.Tracer("reconcile"),
	}
}

func (svc *Service) Store() *Store {
	return svc.store
}

func (svc *Service) startSpan(ctx context.Context, name string, guildId string, sessionId string) (context.Context, trace.Span) {
	return svc.tracer.Start(ctx, "imports."+name, trace.WithAttributes(
		attribute.String("guild.id", guildId),
		attribute.String("import.session_id", sessionId),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (svc *Service) logFailure(ctx context.Context, funcName string, sessionId string, data any, err error) {
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.LogError(svc.logger, "reconcile", funcName, fmt.Sprintf("session=%s correlation_id=%s", sessionId, cid), data, err)
}

// Start opens a session for reference against teamId and runs the first fetch.
// The session exists even when the fetch fails, so the operator can retry it.
func (svc *Service) Start(ctx context.Context, guildId string, reference string, teamId int) (View, error) {
	code, err := warcraftlogs.ParseReportReference(reference)
	if err != nil {
		return View{}, &InvalidInputError{Reason: "report_reference is not a report code or report URL"}
	}
	if teamId <= 0 {
		return View{}, &InvalidInputError{Reason: "target_roster_id is required"}
	}

	sess := svc.store.create(guildId, teamId, strings.TrimSpace(reference), svc.options)
	ctx, span := svc.startSpan(ctx, "Start", guildId, sess.id)
	span.SetAttributes(attribute.String("report.code", code), attribute.Int("team.id", teamId))

	err = svc.fetch(ctx, sess, strings.TrimSpace(reference), code, false)
	endSpan(span, err)
	return sess.View(), err
}

// Refetch loads the report and roster again, keeping operator edits by character.
// An empty reference reuses the session's last one.
func (svc *Service) Refetch(ctx context.Context, guildId string, id string, reference string) (View, error) {
	sess, err := svc.store.Get(guildId, id)
	if err != nil {
		return View{}, err
	}
	if strings.TrimSpace(reference) == "" {
		sess.mu.Lock()
		reference = sess.reference
		sess.mu.Unlock()
	}
	code, err := warcraftlogs.ParseReportReference(reference)
	if err != nil {
		return sess.View(), &InvalidInputError{Reason: "report_reference is not a report code or report URL"}
	}

	ctx, span := svc.startSpan(ctx, "Refetch", guildId, id)
	err = svc.fetch(ctx, sess, strings.TrimSpace(reference), code, true)
	endSpan(span, err)
	return sess.View(), err
}

// fetch loads the report and roster in parallel. fresh bypasses a caching
// fetcher so reports still being logged show new participants.
func (svc *Service) fetch(ctx context.Context, sess *Session, reference string, code string, fresh bool) error {
	if err := sess.beginFetch(reference, code); err != nil {
		return err
	}

	var (
		report     *warcraftlogs.Report
		characters []Character
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetchReport := svc.deps.Fetcher.FetchReport
		if refresher, ok := svc.deps.Fetcher.(ReportRefresher); ok && fresh {
			fetchReport = refresher.RefreshReport
		}
		r, err := fetchReport(gctx, code)
		if err != nil {
			return err
		}
		report = r
		return nil
	})
	g.Go(func() error {
		c, err := svc.deps.Directory.ListRosterCharacters(gctx, sess.teamId)
		if err != nil {
			return fmt.Errorf("load roster: %w", err)
		}
		characters = c
		return nil
	})
	fetchErr := g.Wait()
	if fetchErr != nil {
		svc.logFailure(ctx, "fetch", sess.id, reference, fetchErr)
		fetchErr = &IngestionFailedError{Reference: reference, Err: fetchErr}
	} else if characters == nil {
		characters = []Character{}
	}
	return sess.finishFetch(report, characters, fetchErr)
}

func (svc *Service) Get(guildId string, id string) (View, error) {
	sess, err := svc.store.Get(guildId, id)
	if err != nil {
		return View{}, err
	}
	return sess.View(), nil
}

func (svc *Service) SetClassification(guildId string, id string, generation int, index int, classification string) (View, error) {
	sess, err := svc.store.Get(guildId, id)
	if err != nil {
		return View{}, err
	}
	if err := sess.SetClassification(generation, index, Classification(strings.ToLower(strings.TrimSpace(classification)))); err != nil {
		return sess.View(), err
	}
	return sess.View(), nil
}

func (svc *Service) SetBenchedReason(guildId string, id string, generation int, index int, reason string) (View, error) {
	sess, err := svc.store.Get(guildId, id)
	if err != nil {
		return View{}, err
	}
	if err := sess.SetBenchedReason(generation, index, reason); err != nil {
		return sess.View(), err
	}
	return sess.View(), nil
}

func (svc *Service) IgnoreUnknown(guildId string, id string, generation int, index int, ignored bool) (View, error) {
	sess, err := svc.store.Get(guildId, id)
	if err != nil {
		return View{}, err
	}
	if err := sess.IgnoreUnknown(generation, index, ignored); err != nil {
		return sess.View(), err
	}
	return sess.View(), nil
}

type ResolveInput struct {
	MembershipId int
	Overrides    ResolveOverrides
}

// Resolve creates a character for an unknown participant, then rebuilds the
// result from the reloaded roster. The participant stays unknown on failure.
func (svc *Service) Resolve(ctx context.Context, guildId string, id string, generation int, index int, input ResolveInput) (View, error) {
	sess, err := svc.store.Get(guildId, id)
	if err != nil {
		return View{}, err
	}
	ctx, span := svc.startSpan(ctx, "Resolve", guildId, id)
	err = svc.resolve(ctx, sess, generation, index, input)
	endSpan(span, err)
	return sess.View(), err
}

func (svc *Service) resolve(ctx context.Context, sess *Session, generation int, index int, input ResolveInput) error {
	entry, teamId, err := sess.beginResolve(generation, index)
	if err != nil {
		return err
	}
	p := entry.Participant

	req, err := BuildCharacterCreateRequest(entry, input.MembershipId, teamId).WithOverrides(input.Overrides)
	if err != nil {
		sess.failResolve(p.ExternalId, err.Error())
		return &ResolutionFailedError{ParticipantName: p.Name, Message: err.Error(), Err: err}
	}

	characterId, err := svc.deps.Creator.CreateCharacter(ctx, req)
	if err != nil {
		svc.logFailure(ctx, "resolve", sess.id, req, err)
		sess.failResolve(p.ExternalId, err.Error())
		return &ResolutionFailedError{ParticipantName: p.Name, Message: err.Error(), Err: err}
	}

	characters, err := svc.deps.Directory.ListRosterCharacters(ctx, teamId)
	if err != nil {
		svc.logFailure(ctx, "resolve", sess.id, characterId, err)
		msg := fmt.Sprintf("character %d was created but the roster could not be reloaded: %v", characterId, err)
		sess.failResolve(p.ExternalId, msg)
		return &ResolutionFailedError{ParticipantName: p.Name, Message: msg, Err: err}
	}
	return sess.finishResolve(characters)
}

// Commit creates the raid with the current attendance records. It is never
// retried here; a failure leaves the session editable with its edits intact.
func (svc *Service) Commit(ctx context.Context, guildId string, id string, fields EventFields) (View, error) {
	sess, err := svc.store.Get(guildId, id)
	if err != nil {
		return View{}, err
	}
	ctx, span := svc.startSpan(ctx, "Commit", guildId, id)
	err = svc.commit(ctx, guildId, sess, fields)
	endSpan(span, err)
	return sess.View(), err
}

func commitLockKey(guildId string, req *CommitRequest) string {
	return fmt.Sprintf("lock:raid-commit:%s:%d:%d", guildId, req.RosterId, req.ScheduledAt.Unix())
}

func (svc *Service) commit(ctx context.Context, guildId string, sess *Session, fields EventFields) error {
	req, err := sess.beginCommit(fields)
	if err != nil {
		return err
	}

	if svc.deps.Locker != nil {
		release, err := svc.deps.Locker.Obtain(ctx, commitLockKey(guildId, req), 30*time.Second)
		if err != nil {
			sess.failCommit(err)
			return &CommitFailedError{Err: err}
		}
		defer release()
	}

	raidId, err := svc.deps.Raids.CreateRaid(ctx, req)
	if err != nil {
		svc.logFailure(ctx, "commit", sess.id, req, err)
		sess.failCommit(err)
		return &CommitFailedError{Err: err}
	}
	sess.finishCommit(raidId)

	if svc.deps.Notifier != nil {
		event := CommittedEvent{GuildId: guildId, SessionId: sess.id, RaidId: raidId, Request: req}
		if err := svc.deps.Notifier.RaidCommitted(ctx, event); err != nil {
			svc.logFailure(ctx, "commit", sess.id, raidId, fmt.Errorf("notify raid committed: %w", err))
		}
	}
	return nil
}

// Discard drops the session. An outstanding request still settles, on a
// session nobody can reach anymore.
func (svc *Service) Discard(guildId string, id string) error {
	return svc.store.Delete(guildId, id)
}

// LinkExisting is reserved for binding an unknown participant to an existing
// character.
func (svc *Service) LinkExisting(guildId string, id string) error {
	if _, err := svc.store.Get(guildId, id); err != nil {
		return err
	}
	return ErrLinkNotSupported
}
