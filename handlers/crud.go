package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

func createHandler[In any, T any](create func(context.Context, *In) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input In
		if !bindJSON(c, &input) {
			return
		}
		result, err := create(c.Request.Context(), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func updateHandler[In any, T any](update func(context.Context, int, *In) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input In
		if !bindJSON(c, &input) {
			return
		}
		result, err := update(c.Request.Context(), id, &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func deleteHandler[T any](del func(context.Context, int) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		result, err := del(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getHandler[T any](get func(context.Context, int) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		result, err := get(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func toggleActiveHandler[T any](toggle func(context.Context, int, bool) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req toggleActiveRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err := toggle(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// listAllHandler serves the cached id/name lists behind dropdowns.
func listAllHandler[T any](list func(context.Context) ([]*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := list(c.Request.Context())
		respondList(c, results, err)
	}
}

func respondList[T any](c *gin.Context, results []*T, err error) {
	if err != nil {
		respondModelError(c, err)
		return
	}
	if results == nil {
		results = []*T{}
	}
	c.JSON(http.StatusOK, results)
}
