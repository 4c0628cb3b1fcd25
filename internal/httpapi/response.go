package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ostepan8/scheduled/internal/apperr"
	"github.com/ostepan8/scheduled/internal/model"
	"github.com/ostepan8/scheduled/internal/recurrence"
)

// envelope is spec.md §6's response shape: {status:"ok", data:...} or
// {status:"error", message}.
type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ok writes a 200 success envelope.
func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Status: "ok", Data: data})
}

// created writes a 201 success envelope.
func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, envelope{Status: "ok", Data: data})
}

// fail classifies err (translating known domain sentinels from
// internal/model and internal/recurrence into apperr Kinds, the way the
// teacher's response.FromDomainError switch does) and writes the
// class-appropriate status code with an error envelope.
func fail(c *gin.Context, err error) {
	status, message := classify(err)
	c.JSON(status, envelope{Status: "error", Message: message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrNotDeleted):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, model.ErrAlreadyExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, model.ErrInvalidEvent):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, recurrence.ErrInvalidInterval),
		errors.Is(err, recurrence.ErrNoWeekdays),
		errors.Is(err, recurrence.ErrUnknownFrequency):
		return http.StatusBadRequest, err.Error()
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperr.KindInvalidInput, apperr.KindInvalidPattern:
			return http.StatusBadRequest, appErr.Error()
		case apperr.KindUnauthorized:
			return http.StatusUnauthorized, appErr.Error()
		case apperr.KindForbidden:
			return http.StatusForbidden, appErr.Error()
		case apperr.KindNotFound:
			return http.StatusNotFound, appErr.Error()
		case apperr.KindDuplicateID, apperr.KindConflict:
			return http.StatusConflict, appErr.Error()
		case apperr.KindRateLimited:
			return http.StatusTooManyRequests, appErr.Error()
		case apperr.KindTransient:
			return http.StatusBadGateway, appErr.Error()
		}
	}

	return http.StatusInternalServerError, "an internal error occurred"
}
