package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guildroster/roster_backend/models"
	"github.com/guildroster/roster_backend/utils"
)

func guildIdOf(c *gin.Context) string {
	guildId, _ := utils.GetGuildIdFromContext(c.Request.Context())
	return guildId
}

// idParam writes a 400 and returns false when the path parameter is not a positive id.
func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// respondModelError maps model errors: missing records are 404, the rest are
// the caller's fault.
func respondModelError(c *gin.Context, err error) {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return false
	}
	return true
}

func optionalString(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}

func optionalInt(c *gin.Context, key string) (*int, error) {
	v := optionalString(c, key)
	if v == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(*v)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &n, nil
}

func optionalBool(c *gin.Context, key string) (*bool, error) {
	v := optionalString(c, key)
	if v == nil {
		return nil, nil
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &b, nil
}

// listFilter reads name, is_active and sort.
func listFilter(c *gin.Context) (models.ListFilter, bool) {
	isActive, err := optionalBool(c, "is_active")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.ListFilter{}, false
	}
	return models.ListFilter{
		Name:     optionalString(c, "name"),
		IsActive: isActive,
		Sort:     c.Query("sort"),
	}, true
}

type toggleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
