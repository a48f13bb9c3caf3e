package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/guildroster/roster_backend/models"
	"github.com/guildroster/roster_backend/utils"
	"github.com/shopspring/decimal"
)

type RaidColumn struct {
	RaidId      int       `json:"raid_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Title       string    `json:"title"`
}

type AttendanceMark string

const (
	AttendanceMarkPresent AttendanceMark = "present"
	AttendanceMarkAbsent  AttendanceMark = "absent"
	AttendanceMarkBenched AttendanceMark = "benched"
	AttendanceMarkNone    AttendanceMark = ""
)

type CharacterAttendanceSummary struct {
	CharacterId    int              `json:"character_id"`
	CharacterName  string           `json:"character_name"`
	Class          string           `json:"class"`
	RaidCount      int              `json:"raid_count"`
	PresentCount   int              `json:"present_count"`
	AbsentCount    int              `json:"absent_count"`
	BenchedCount   int              `json:"benched_count"`
	AttendanceRate decimal.Decimal  `json:"attendance_rate"`
	Marks          []AttendanceMark `json:"marks"`
}

type TeamAttendanceReport struct {
	TeamId     int                           `json:"team_id"`
	TeamName   string                        `json:"team_name"`
	From       *time.Time                    `json:"from"`
	To         *time.Time                    `json:"to"`
	Raids      []RaidColumn                  `json:"raids"`
	Characters []*CharacterAttendanceSummary `json:"characters"`
}

// AttendanceRate is the share of recorded raids the character was available
// for (present or benched), rounded to 2 decimal places.
func AttendanceRate(present, benched, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(present + benched)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}

// BuildTeamAttendanceReport pivots attendance rows into one summary per
// character. Marks are aligned with Raids; a character without a row for a
// raid gets AttendanceMarkNone there.
func BuildTeamAttendanceReport(team *models.Team, rows []*models.TeamAttendanceRow) *TeamAttendanceReport {
	report := &TeamAttendanceReport{
		TeamId:     team.ID,
		TeamName:   team.Name,
		Raids:      []RaidColumn{},
		Characters: []*CharacterAttendanceSummary{},
	}

	raidIndex := make(map[int]int)
	for _, row := range rows {
		if _, ok := raidIndex[row.RaidId]; ok {
			continue
		}
		raidIndex[row.RaidId] = len(report.Raids)
		report.Raids = append(report.Raids, RaidColumn{
			RaidId:      row.RaidId,
			ScheduledAt: row.ScheduledAt,
			Title:       row.RaidTitle,
		})
	}

	byCharacter := make(map[int]*CharacterAttendanceSummary)
	for _, row := range rows {
		summary, ok := byCharacter[row.CharacterId]
		if !ok {
			summary = &CharacterAttendanceSummary{
				CharacterId:   row.CharacterId,
				CharacterName: row.CharacterName,
				Class:         row.Class,
				Marks:         make([]AttendanceMark, len(report.Raids)),
			}
			byCharacter[row.CharacterId] = summary
			report.Characters = append(report.Characters, summary)
		}
		summary.RaidCount++
		mark := AttendanceMarkAbsent
		switch {
		case row.IsPresent:
			mark = AttendanceMarkPresent
			summary.PresentCount++
		case row.IsBenched:
			mark = AttendanceMarkBenched
			summary.BenchedCount++
		default:
			summary.AbsentCount++
		}
		summary.Marks[raidIndex[row.RaidId]] = mark
	}

	for _, summary := range report.Characters {
		summary.AttendanceRate = AttendanceRate(summary.PresentCount, summary.BenchedCount, summary.RaidCount)
	}
	sort.SliceStable(report.Characters, func(i, j int) bool {
		return report.Characters[i].CharacterName < report.Characters[j].CharacterName
	})
	return report
}

func GetTeamAttendanceReport(ctx context.Context, teamId int, from *time.Time, to *time.Time) (*TeamAttendanceReport, error) {
	started := time.Now()
	guildId, _ := utils.GetGuildIdFromContext(ctx)

	cacheKey := fmt.Sprintf("TeamAttendance:%s:%d:%s:%s", guildId, teamId, formatBound(from), formatBound(to))
	if reportCacheEnabled() {
		var cached TeamAttendanceReport
		if ok, err := cacheGet(cacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	team, err := models.GetTeam(ctx, teamId)
	if err != nil {
		return nil, err
	}
	rows, err := models.ListTeamAttendance(ctx, teamId, from, to)
	if err != nil {
		return nil, err
	}
	report := BuildTeamAttendanceReport(team, rows)
	report.From = from
	report.To = to

	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, report, reportCacheTTL())
	}
	logSlowReport(ctx, "team_attendance", started, map[string]any{"team_id": teamId, "rows": len(rows)})
	return report, nil
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
