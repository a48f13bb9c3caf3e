package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guildroster/roster_backend/reconcile"
	"github.com/guildroster/roster_backend/utils"
)

type startImportRequest struct {
	ReportReference string `json:"report_reference" binding:"required"`
	TargetRosterId  int    `json:"target_roster_id"`
}

type refetchImportRequest struct {
	ReportReference string `json:"report_reference"`
}

type classificationRequest struct {
	Generation     *int   `json:"generation" binding:"required"`
	Classification string `json:"classification" binding:"required"`
}

type benchedReasonRequest struct {
	Generation *int   `json:"generation" binding:"required"`
	Reason     string `json:"reason"`
}

type ignoreUnknownRequest struct {
	Generation *int  `json:"generation" binding:"required"`
	Ignored    *bool `json:"ignored"`
}

type resolveUnknownRequest struct {
	Generation   *int    `json:"generation" binding:"required"`
	MembershipId int     `json:"membership_id"`
	Name         *string `json:"name"`
	Class        *string `json:"class"`
	Role         *string `json:"role"`
	IsMain       *bool   `json:"is_main"`
}

type commitImportRequest struct {
	ScheduledAt      string `json:"scheduled_at"`
	RosterId         int    `json:"roster_id"`
	ScenarioSelector string `json:"scenario_selector"`
	Title            string `json:"title"`
	Note             string `json:"note"`
}

// RegisterImportRoutes mounts the report import workflow on rg.
func RegisterImportRoutes(rg *gin.RouterGroup, svc *reconcile.Service) {
	imports := rg.Group("/imports")
	imports.POST("", startImportHandler(svc))
	imports.GET("/:id", getImportHandler(svc))
	imports.DELETE("/:id", discardImportHandler(svc))
	imports.POST("/:id/fetch", refetchImportHandler(svc))
	imports.PUT("/:id/matched/:index/classification", classificationHandler(svc))
	imports.PUT("/:id/matched/:index/benched-reason", benchedReasonHandler(svc))
	imports.POST("/:id/unknown/:index/resolve", resolveUnknownHandler(svc))
	imports.POST("/:id/unknown/:index/ignore", ignoreUnknownHandler(svc))
	imports.POST("/:id/unknown/:index/link", linkUnknownHandler(svc))
	imports.POST("/:id/commit", commitImportHandler(svc))
}

// importErrorStatus translates workflow errors to HTTP statuses.
func importErrorStatus(err error) (int, gin.H) {
	body := gin.H{"error": err.Error()}

	var incomplete *reconcile.IncompleteEventError
	var resolveErr *reconcile.ResolutionFailedError
	var commitErr *reconcile.CommitFailedError
	var ingestErr *reconcile.IngestionFailedError
	switch {
	case errors.As(err, &incomplete):
		body["missing"] = incomplete.Missing
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, reconcile.ErrSessionNotFound):
		return http.StatusNotFound, body
	case errors.Is(err, reconcile.ErrLinkNotSupported):
		return http.StatusNotImplemented, body
	case errors.Is(err, reconcile.ErrStaleGeneration),
		errors.Is(err, reconcile.ErrRequestOutstanding),
		errors.Is(err, reconcile.ErrSessionBusy),
		errors.Is(err, reconcile.ErrInvalidState):
		return http.StatusConflict, body
	case errors.As(err, &resolveErr):
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &commitErr):
		if commitErr.Rejected() {
			return http.StatusUnprocessableEntity, body
		}
		return http.StatusBadGateway, body
	case errors.As(err, &ingestErr):
		return http.StatusBadGateway, body
	case errors.Is(err, reconcile.ErrInvalidInput),
		errors.Is(err, reconcile.ErrEntryIndexOutOfRange),
		errors.Is(err, reconcile.ErrInvalidClassification):
		return http.StatusBadRequest, body
	}
	return http.StatusInternalServerError, body
}

// respondImport returns the view, or the error with the view attached when
// the session still exists.
func respondImport(c *gin.Context, okStatus int, view reconcile.View, err error) {
	if err == nil {
		c.JSON(okStatus, view)
		return
	}
	status, body := importErrorStatus(err)
	if view.ID != "" {
		body["session"] = view
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return 0, false
	}
	return index, true
}

func startImportHandler(svc *reconcile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req startImportRequest
		if !bindJSON(c, &req) {
			return
		}
		view, err := svc.Start(c.Request.Context(), guildIdOf(c), req.ReportReference, req.TargetRosterId)
		respondImport(c, http.StatusCreated, view, err)
	}
}

func getImportHandler(svc *reconcile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Get(guildIdOf(c), c.Param("id"))
		respondImport(c, http.StatusOK, view, err)
	}
}

func discardImportHandler(svc *reconcile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Discard(guildIdOf(c), c.Param("id")); err != nil {
			status, body := importErrorStatus(err)
			c.JSON(status, body)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func refetchImportHandler(svc *reconcile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refetchImportRequest
		// the body is optional
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		view, err := svc.Refetch(c.Request.Context(), guildIdOf(c), c.Param("id"), req.ReportReference)
		respondImport(c, http.StatusOK, view, err)
	}
}

func classificationHandler(svc *reconcile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := indexParam(c)
		if !ok {
			return
		}
		var req classificationRequest
		if !bindJSON(c, &req) {
			return
		}
		view, err := svc.SetClassification(guildIdOf(c), c.Param("id"), *req.Generation, index, req.Classification)
		respondImport(c, http.StatusOK, view, err)
	}
}

func benchedReasonHandler(svc *reconcile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := indexParam(c)
		if !ok {
			return
		}
		var req benchedReasonRequest
		if !bindJSON(c, &req) {
			return
		}
		view, err := svc.SetBenchedReason(guildIdOf(c), c.Param("id"), *req.Generation, index, req.Reason)
		respondImport(c, http.StatusOK, view, err)
	}
}

func ignoreUnknownHandler(svc *reconcile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := indexParam(c)
		if !ok {
			return
		}
		var req ignoreUnknownRequest
		if !bindJSON(c, &req) {
			return
		}
		ignored := true
		if req.Ignored != nil {
			ignored = *req.Ignored
		}
		view, err := svc.IgnoreUnknown(guildIdOf(c), c.Param("id"), *req.Generation, index, ignored)
		respondImport(c, http.StatusOK, view, err)
	}
}

func resolveUnknownHandler(svc *reconcile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, ok := indexParam(c)
		if !ok {
			return
		}
		var req resolveUnknownRequest
		if !bindJSON(c, &req) {
			return
		}
		input := reconcile.ResolveInput{
			MembershipId: req.MembershipId,
			Overrides: reconcile.ResolveOverrides{
				Name:   req.Name,
				Class:  req.Class,
				Role:   req.Role,
				IsMain: req.IsMain,
			},
		}
		view, err := svc.Resolve(c.Request.Context(), guildIdOf(c), c.Param("id"), *req.Generation, index, input)
		respondImport(c, http.StatusOK, view, err)
	}
}

func linkUnknownHandler(svc *reconcile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.LinkExisting(guildIdOf(c), c.Param("id"))
		status, body := importErrorStatus(err)
		c.JSON(status, body)
	}
}

func commitImportHandler(svc *reconcile.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req commitImportRequest
		if !bindJSON(c, &req) {
			return
		}
		fields := reconcile.EventFields{
			RosterId:         req.RosterId,
			ScenarioSelector: req.ScenarioSelector,
			Title:            req.Title,
			Note:             req.Note,
		}
		if strings.TrimSpace(req.ScheduledAt) != "" {
			t, err := utils.ParseDateTime(req.ScheduledAt, time.UTC)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_at"})
				return
			}
			fields.ScheduledAt = &t
		}
		view, err := svc.Commit(c.Request.Context(), guildIdOf(c), c.Param("id"), fields)
		respondImport(c, http.StatusOK, view, err)
	}
}
