package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guildroster/roster_backend/middlewares"
	"github.com/guildroster/roster_backend/models"
	"github.com/guildroster/roster_backend/utils"
)

type raidSummary struct {
	*models.Raid
	TeamName     string `json:"team_name"`
	ScenarioName string `json:"scenario_name"`
	PresentCount int    `json:"present_count"`
	BenchedCount int    `json:"benched_count"`
	AbsentCount  int    `json:"absent_count"`
}

type attendanceDetail struct {
	*models.Attendance
	Character *models.Character `json:"character"`
}

type raidDetail struct {
	*models.Raid
	Team        *models.Team       `json:"team"`
	Scenario    *models.Scenario   `json:"scenario"`
	Attendances []attendanceDetail `json:"attendances"`
}

func RegisterRaidRoutes(rg *gin.RouterGroup) {
	raids := rg.Group("/raids")
	raids.GET("", listRaidsHandler())
	raids.POST("", createHandler(models.CreateRaidWithAttendance))
	raids.GET("/:id", raidDetailHandler())
	raids.PUT("/:id", updateHandler(models.UpdateRaid))
	raids.DELETE("/:id", deleteHandler(models.DeleteRaid))
	raids.PUT("/:id/attendances/:attendanceId", updateAttendanceHandler())
}

func listRaidsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := utils.ParseDateRange(c.Query("from"), c.Query("to"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter := models.RaidFilter{From: from, To: to, Sort: c.Query("sort")}
		if filter.TeamId, err = optionalInt(c, "team_id"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if filter.ScenarioId, err = optionalInt(c, "scenario_id"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		raids, err := models.ListRaids(ctx, filter)
		if err != nil {
			respondModelError(c, err)
			return
		}

		raidIds := make([]int, 0, len(raids))
		for _, r := range raids {
			raidIds = append(raidIds, r.ID)
		}
		attendances, errs := middlewares.GetRaidsAttendances(ctx, raidIds)
		for _, err := range errs {
			if err != nil {
				respondModelError(c, err)
				return
			}
		}

		// queue every lookup first so the loaders batch them
		loaders := middlewares.For(ctx)
		teamThunks := make([]func() (*models.Team, error), 0, len(raids))
		scenarioThunks := make([]func() (*models.Scenario, error), 0, len(raids))
		for _, r := range raids {
			teamThunks = append(teamThunks, loaders.TeamLoader.Load(ctx, r.TeamId))
			scenarioThunks = append(scenarioThunks, loaders.ScenarioLoader.Load(ctx, r.ScenarioId))
		}

		results := make([]raidSummary, 0, len(raids))
		for i, r := range raids {
			summary := raidSummary{Raid: r}
			if team, err := teamThunks[i](); err == nil {
				summary.TeamName = team.Name
			}
			if scenario, err := scenarioThunks[i](); err == nil {
				summary.ScenarioName = scenario.Name
			}
			for _, a := range attendances[i] {
				switch {
				case utils.DereferencePtr(a.IsPresent):
					summary.PresentCount++
				case utils.DereferencePtr(a.IsBenched):
					summary.BenchedCount++
				default:
					summary.AbsentCount++
				}
			}
			results = append(results, summary)
		}
		c.JSON(http.StatusOK, results)
	}
}

func raidDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		raid, err := models.GetRaid(ctx, id)
		if err != nil {
			respondModelError(c, err)
			return
		}

		detail := raidDetail{Raid: raid, Attendances: make([]attendanceDetail, 0, len(raid.Attendances))}
		characterIds := make([]int, 0, len(raid.Attendances))
		for _, a := range raid.Attendances {
			characterIds = append(characterIds, a.CharacterId)
		}
		characters, errs := middlewares.GetCharacters(ctx, characterIds)
		for i, a := range raid.Attendances {
			row := attendanceDetail{Attendance: a}
			if errs == nil || errs[i] == nil {
				row.Character = characters[i]
			}
			detail.Attendances = append(detail.Attendances, row)
		}
		if detail.Team, err = middlewares.GetTeam(ctx, raid.TeamId); err != nil {
			respondModelError(c, err)
			return
		}
		if detail.Scenario, err = middlewares.GetScenario(ctx, raid.ScenarioId); err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func updateAttendanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		raidId, ok := idParam(c, "id")
		if !ok {
			return
		}
		id, ok := idParam(c, "attendanceId")
		if !ok {
			return
		}
		var input models.NewAttendance
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.UpdateAttendance(c.Request.Context(), raidId, id, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
