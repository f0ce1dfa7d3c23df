package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"bitesquicky/internal/apperr"
	"bitesquicky/internal/logger"
)

const (
	permissionHint  = "the database user lacks rights on this collection; grant readWrite on the bitesquicky database"
	finalStatusHint = "delivered and cancelled orders are final; delete the order to undo it"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		logger.Area("HTTP").Error("panic recovered", zap.String("route", route), zap.Any("panic", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db pinger) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Ping(checkCtx)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	logger.Area("HTTP").Info("returning error",
		zap.String("route", route), zap.Int("status", status), zap.String("error", message))
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func statusForCode(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalid:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodePermissionDenied:
		return http.StatusForbidden
	case apperr.CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondAppError renders err by its apperr code. Internal details are logged,
// not returned.
func respondAppError(c *gin.Context, route string, err error) {
	log := logger.Area("HTTP")
	e, ok := apperr.As(err)
	if !ok {
		log.Error("unclassified error", zap.String("route", route), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	status := statusForCode(e.Code)
	body := gin.H{"error": publicMessage(e), "code": e.Code}
	if e.Field != "" {
		body["field"] = e.Field
	}
	switch {
	case e.Kind == apperr.KindPartialFailure:
		body["error"] = "the request was only partly saved; contact support before retrying"
	case e.Code == apperr.CodePermissionDenied:
		body["hint"] = permissionHint
	case errors.Is(err, apperr.ErrStatusTransition):
		body["hint"] = finalStatusHint
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("route", route), zap.Int("status", status), zap.Error(err))
	} else {
		log.Info("request rejected", zap.String("route", route), zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, body)
}

func publicMessage(e *apperr.Error) string {
	if e.Kind == apperr.KindValidation {
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
	}
	switch e.Code {
	case apperr.CodeNotFound:
		if e.Message != "" {
			return e.Message
		}
		return "not found"
	case apperr.CodeConflict:
		return "conflicting update, reload and try again"
	case apperr.CodePermissionDenied:
		return "permission denied"
	case apperr.CodeUnavailable:
		return "database unavailable"
	}
	return "internal server error"
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "min", "gte":
				details = append(details, fmt.Sprintf("%s must be at least %s", field, fieldError.Param()))
			case "max", "lte":
				details = append(details, fmt.Sprintf("%s must be at most %s", field, fieldError.Param()))
			case "oneof":
				details = append(details, fmt.Sprintf("%s must be one of %s", field, fieldError.Param()))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
