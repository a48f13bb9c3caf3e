package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guildroster/roster_backend/models/reports"
	"github.com/guildroster/roster_backend/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func RegisterReportRoutes(rg *gin.RouterGroup) {
	rg.GET("/teams/:id/attendance", teamAttendanceHandler(nil, "", ""))
	rg.GET("/teams/:id/attendance/export.xlsx", teamAttendanceHandler(reports.WriteAttendanceExcel, xlsxContentType, "xlsx"))
	rg.GET("/teams/:id/attendance/export.png", teamAttendanceHandler(reports.WriteAttendancePNG, "image/png", "png"))
	rg.GET("/attendance/export.zip", attendanceArchiveHandler())
}

// teamAttendanceHandler serves the report as JSON, or through write as a download.
func teamAttendanceHandler(write func(io.Writer, *reports.TeamAttendanceReport) error, contentType string, ext string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		from, to, err := utils.ParseDateRange(c.Query("from"), c.Query("to"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		report, err := reports.GetTeamAttendanceReport(c.Request.Context(), id, from, to)
		if err != nil {
			respondModelError(c, err)
			return
		}
		if write == nil {
			c.JSON(http.StatusOK, report)
			return
		}

		var buf bytes.Buffer
		if err := write(&buf, report); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		filename := fmt.Sprintf("attendance_%d_%s.%s", id, time.Now().UTC().Format("20060102"), ext)
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, contentType, buf.Bytes())
	}
}

func attendanceArchiveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := utils.ParseDateRange(c.Query("from"), c.Query("to"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var buf bytes.Buffer
		if err := reports.WriteAttendanceArchive(c.Request.Context(), &buf, from, to); err != nil {
			respondModelError(c, err)
			return
		}
		filename := fmt.Sprintf("attendance_%s.zip", time.Now().UTC().Format("20060102"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "application/zip", buf.Bytes())
	}
}
