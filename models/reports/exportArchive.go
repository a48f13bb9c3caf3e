package reports

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/guildroster/roster_backend/models"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func archiveFileName(team *models.Team) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(team.Name, "_"), "_")
	if name == "" {
		name = "team"
	}
	return fmt.Sprintf("%d_%s.xlsx", team.ID, name)
}

// WriteAttendanceArchive streams a zip with one attendance workbook per
// active team of the guild.
func WriteAttendanceArchive(ctx context.Context, w io.Writer, from *time.Time, to *time.Time) error {
	isActive := true
	teams, err := models.ListTeams(ctx, models.ListFilter{IsActive: &isActive})
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, team := range teams {
		report, err := GetTeamAttendanceReport(ctx, team.ID, from, to)
		if err != nil {
			zw.Close()
			return err
		}
		entry, err := zw.Create(archiveFileName(team))
		if err != nil {
			zw.Close()
			return err
		}
		if err := WriteAttendanceExcel(entry, report); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}
