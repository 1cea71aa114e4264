package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"finloan/internal/dates"
	apperrors "finloan/internal/errors"
	"finloan/internal/middleware"
	"finloan/internal/uuid"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads a UUID path parameter.
//
//nolint:unparam // every route names its id "id" today
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithField(apperrors.ErrInvalidInput, param, "Invalid "+param)
	}
	return id, nil
}

// parseDate parses an optional YYYY-MM-DD value. Empty input yields nil.
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := dates.Parse(value)
	if err != nil {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, field, err.Error())
	}
	return &d, nil
}

// asOfQuery reads the optional as_of query parameter, defaulting to today (UTC).
func asOfQuery(c *gin.Context) (time.Time, error) {
	asOf, err := parseDate("as_of", c.Query("as_of"))
	if err != nil {
		return time.Time{}, err
	}
	if asOf == nil {
		return dates.Today(nil), nil
	}
	return *asOf, nil
}

// fieldSentinels maps request fields to the domain error reported when the
// field fails a value check. Missing fields stay INVALID_INPUT.
var fieldSentinels = map[string]*apperrors.AppError{
	"amount":        apperrors.ErrInvalidAmount,
	"monthly_limit": apperrors.ErrInvalidLimit,
	"category":      apperrors.ErrInvalidCategory,
	"frequency":     apperrors.ErrInvalidFrequency,
	"month":         apperrors.ErrInvalidMonth,
}

// bindError converts a binding failure into an AppError naming the field.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Malformed request: "+err.Error())
	}

	fe := verrs[0]
	field := fe.Field()
	if sentinel, ok := fieldSentinels[field]; ok && fe.Tag() != "required" {
		return sentinel
	}

	msg := fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	if fe.Tag() == "required" {
		msg = field + " is required"
	}
	return apperrors.WithField(apperrors.ErrInvalidInput, field, msg)
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}
