// Package httpresp holds the JSON envelopes shared by every handler.
package httpresp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListResponse pairs a collection with the number of items returned in this
// page, not the table total; pagination stays the caller's concern.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func List[T any](c *gin.Context, data []T) {
	c.JSON(http.StatusOK, ListResponse[T]{
		Data:  data,
		Total: len(data),
	})
}
