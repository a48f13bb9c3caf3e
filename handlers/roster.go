package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guildroster/roster_backend/middlewares"
	"github.com/guildroster/roster_backend/models"
)

// RegisterRosterRoutes mounts guild, user, member, team, character and
// scenario endpoints on an authenticated group.
func RegisterRosterRoutes(rg *gin.RouterGroup) {
	rg.GET("/guild", func(c *gin.Context) {
		guild, err := models.GetCurrentGuild(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, guild)
	})
	rg.PUT("/guild", middlewares.RequireAdmin(), func(c *gin.Context) {
		var input models.NewGuild
		if !bindJSON(c, &input) {
			return
		}
		guild, err := models.UpdateCurrentGuild(c.Request.Context(), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, guild)
	})

	users := rg.Group("/users", middlewares.RequireAdmin())
	users.GET("", func(c *gin.Context) {
		results, err := models.GetUsers(c.Request.Context())
		respondList(c, results, err)
	})
	users.POST("", createHandler(models.CreateUser))
	users.PUT("/:id/active", toggleActiveHandler(models.ToggleActiveUser))
	rg.PUT("/me/password", changePasswordHandler())

	members := rg.Group("/members")
	members.GET("", func(c *gin.Context) {
		filter, ok := listFilter(c)
		if !ok {
			return
		}
		results, err := models.ListGuildMembers(c.Request.Context(), filter)
		respondList(c, results, err)
	})
	members.POST("", createHandler(models.CreateGuildMember))
	members.GET("/:id", getHandler(models.GetGuildMember))
	members.PUT("/:id", updateHandler(models.UpdateGuildMember))
	members.DELETE("/:id", deleteHandler(models.DeleteGuildMember))
	members.PUT("/:id/active", toggleActiveHandler(models.ToggleActiveGuildMember))

	teams := rg.Group("/teams")
	teams.GET("", func(c *gin.Context) {
		filter, ok := listFilter(c)
		if !ok {
			return
		}
		results, err := models.ListTeams(c.Request.Context(), filter)
		respondList(c, results, err)
	})
	teams.POST("", createHandler(models.CreateTeam))
	teams.GET("/:id", getHandler(models.GetTeam))
	teams.PUT("/:id", updateHandler(models.UpdateTeam))
	teams.DELETE("/:id", deleteHandler(models.DeleteTeam))
	teams.PUT("/:id/active", toggleActiveHandler(models.ToggleActiveTeam))
	teams.GET("/:id/characters", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		results, err := models.ListTeamCharacters(c.Request.Context(), id)
		respondList(c, results, err)
	})
	teams.POST("/:id/characters", teamCharactersHandler(true))
	teams.POST("/:id/characters/unassign", teamCharactersHandler(false))

	characters := rg.Group("/characters")
	characters.GET("", listCharactersHandler())
	characters.POST("", createHandler(models.CreateCharacter))
	characters.GET("/:id", getHandler(models.GetCharacter))
	characters.PUT("/:id", updateHandler(models.UpdateCharacter))
	characters.DELETE("/:id", deleteHandler(models.DeleteCharacter))
	characters.PUT("/:id/active", toggleActiveHandler(models.ToggleActiveCharacter))

	scenarios := rg.Group("/scenarios")
	scenarios.GET("", listScenariosHandler())
	scenarios.POST("", createHandler(models.CreateScenario))
	scenarios.GET("/:id", getHandler(models.GetScenario))
	scenarios.PUT("/:id", updateHandler(models.UpdateScenario))
	scenarios.DELETE("/:id", deleteHandler(models.DeleteScenario))
	scenarios.PUT("/:id/active", toggleActiveHandler(models.ToggleActiveScenario))

	lists := rg.Group("/lists")
	lists.GET("/members", listAllHandler(models.ListAllGuildMembers))
	lists.GET("/teams", listAllHandler(models.ListAllTeams))
	lists.GET("/characters", listAllHandler(models.ListAllCharacters))
	lists.GET("/scenarios", listAllHandler(models.ListAllScenarios))
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func changePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePasswordRequest
		if !bindJSON(c, &req) {
			return
		}
		user, err := models.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

type teamCharactersRequest struct {
	CharacterIds []int `json:"character_ids" binding:"required,min=1"`
}

func teamCharactersHandler(assign bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req teamCharactersRequest
		if !bindJSON(c, &req) {
			return
		}
		var (
			team *models.Team
			err  error
		)
		if assign {
			team, err = models.AssignCharacters(c.Request.Context(), id, req.CharacterIds)
		} else {
			team, err = models.UnassignCharacters(c.Request.Context(), id, req.CharacterIds)
		}
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, team)
	}
}

func listCharactersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		base, ok := listFilter(c)
		if !ok {
			return
		}
		filter := models.CharacterFilter{ListFilter: base, Class: optionalString(c, "class")}
		if role := optionalString(c, "role"); role != nil {
			r, err := models.ParseCharacterRole(*role)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			filter.Role = &r
		}
		var err error
		if filter.TeamId, err = optionalInt(c, "team_id"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if filter.MemberId, err = optionalInt(c, "member_id"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		results, err := models.ListCharacters(c.Request.Context(), filter)
		respondList(c, results, err)
	}
}

func listScenariosHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := listFilter(c)
		if !ok {
			return
		}
		var difficulty *models.Difficulty
		if v := optionalString(c, "difficulty"); v != nil {
			d := models.Difficulty(*v)
			if !d.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid difficulty"})
				return
			}
			difficulty = &d
		}
		results, err := models.ListScenarios(c.Request.Context(), filter, difficulty)
		respondList(c, results, err)
	}
}
