package reconcile

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-sql-driver/mysql"
	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/models"
	"github.com/guildroster/roster_backend/utils"
	"github.com/guildroster/roster_backend/warcraftlogs"
)

// ModelDirectory backs the workflow with the roster models. The guild is
// taken from ctx like every other model call.
type ModelDirectory struct{}

func (ModelDirectory) ListRosterCharacters(ctx context.Context, teamId int) ([]Character, error) {
	rows, err := models.ListTeamCharacters(ctx, teamId)
	if err != nil {
		return nil, err
	}
	characters := make([]Character, 0, len(rows))
	for _, c := range rows {
		characters = append(characters, Character{
			ID:    c.ID,
			Name:  c.Name,
			Class: c.Class,
			Role:  warcraftlogs.Role(c.Role),
		})
	}
	return characters, nil
}

func (ModelDirectory) CreateCharacter(ctx context.Context, req CharacterCreateRequest) (int, error) {
	character, err := models.CreateCharacter(ctx, &models.NewCharacter{
		GuildMemberId: req.MembershipId,
		Name:          req.DisplayName,
		Class:         req.Class,
		Role:          models.CharacterRole(req.Role),
		IsMain:        &req.IsMain,
		TeamIds:       req.RosterIds,
	})
	if err != nil {
		return 0, markRejected(err)
	}
	return character.ID, nil
}

func (ModelDirectory) CreateRaid(ctx context.Context, req *CommitRequest) (int, error) {
	input := &models.NewRaid{
		TeamId:           req.RosterId,
		ScenarioSelector: req.ScenarioSelector,
		ScheduledAt:      req.ScheduledAt,
		Title:            req.Title,
		Note:             req.Note,
		Attendances:      make([]models.NewAttendance, 0, len(req.AttendanceRecords)),
	}
	if r := req.Report; r != nil {
		input.ZoneName = r.Zone
		input.ReportCode = r.Code
		input.ReportOwner = r.Owner
		if !r.StartTime.IsZero() {
			start := r.StartTime
			input.StartedAt = &start
		}
		if !r.EndTime.IsZero() {
			end := r.EndTime
			input.EndedAt = &end
		}
	}
	for _, a := range req.AttendanceRecords {
		input.Attendances = append(input.Attendances, models.NewAttendance{
			CharacterId:   a.CharacterId,
			IsPresent:     a.IsPresent,
			IsBenched:     a.IsBenched,
			Note:          a.Note,
			BenchedReason: a.BenchedReason,
		})
	}

	raid, err := models.CreateRaidWithAttendance(ctx, input)
	if err != nil {
		return 0, markRejected(err)
	}
	return raid.ID, nil
}

// markRejected wraps err with ErrRejected unless the store could not be
// reached at all.
func markRejected(err error) error {
	if isInfrastructureError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRejected, err)
}

func isInfrastructureError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return !utils.IsDuplicateKeyError(err)
	}
	return false
}

// RedisCommitLocker holds a redislock for the duration of a commit.
// Without redis it does nothing.
type RedisCommitLocker struct{}

func (RedisCommitLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, nil
	}
	lock, err := locker.Obtain(ctx, key, ttl, nil)
	if err == redislock.ErrNotObtained {
		return nil, ErrRequestOutstanding
	} else if err != nil {
		// redis trouble must not block imports
		config.GetLogger().WithField("key", key).Warnf("commit lock unavailable: %v", err)
		return func() {}, nil
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil && err != redislock.ErrLockNotHeld {
			config.GetLogger().WithField("key", key).Warnf("release commit lock: %v", err)
		}
	}, nil
}

// PubSubNotifier publishes raid.committed to RAID_EVENTS_TOPIC when set.
type PubSubNotifier struct{}

func (PubSubNotifier) RaidCommitted(ctx context.Context, event CommittedEvent) error {
	if config.RaidEventsTopic() == "" {
		return nil
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	msg := config.RaidEventMessage{
		Type:          "raid.committed",
		GuildId:       event.GuildId,
		RaidId:        event.RaidId,
		TeamId:        event.Request.RosterId,
		ScheduledAt:   event.Request.ScheduledAt,
		PresentCount:  event.Request.PresentCount(),
		AbsentCount:   event.Request.AbsentCount(),
		CorrelationId: cid,
	}
	if event.Request.Report != nil {
		msg.ReportCode = event.Request.Report.Code
	}
	_, err := config.PublishRaidEvent(ctx, msg)
	return err
}

// NewModelDependencies wires the workflow to the database, redis and Pub/Sub.
func NewModelDependencies(fetcher ReportFetcher) Dependencies {
	dir := ModelDirectory{}
	return Dependencies{
		Fetcher:   fetcher,
		Directory: dir,
		Creator:   dir,
		Raids:     dir,
		Notifier:  PubSubNotifier{},
		Locker:    RedisCommitLocker{},
	}
}
