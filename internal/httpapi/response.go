package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HendryAvila/storybook/internal/library"
)

// ApiResponse is the envelope of every JSON response.
type ApiResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func success[T any](c *gin.Context, data T, message string) {
	c.JSON(http.StatusOK, ApiResponse[T]{Success: true, Data: data, Message: message})
}

func created[T any](c *gin.Context, data T, message string) {
	c.JSON(http.StatusCreated, ApiResponse[T]{Success: true, Data: data, Message: message})
}

func failStatus(c *gin.Context, status int, message string) {
	c.JSON(status, ApiResponse[any]{Error: message})
}

// fail answers with the status that matches err's kind.
func fail(c *gin.Context, err error) {
	failStatus(c, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch library.Classify(err) {
	case library.KindNotFound:
		return http.StatusNotFound
	case library.KindInvalid, library.KindUnsupported:
		return http.StatusBadRequest
	case library.KindUnavailable:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
