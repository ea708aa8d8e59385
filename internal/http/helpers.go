package http

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"manhua-tracker/internal/entities"
)

// ErrorResponse is the standard error payload for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Pagination describes the page window applied to a list response.
// Total counts all matching rows, ignoring the window.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// PaginatedResponse wraps list data with its pagination metadata.
type PaginatedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, message)
}

func respondNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, message)
}

func respondConflict(c *gin.Context, message string) {
	respondError(c, http.StatusConflict, message)
}

// respondInternalError logs the underlying error and hides it from the
// client behind a generic message.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	respondError(c, http.StatusInternalServerError, "Internal server error.")
}

func respondSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// parseIDParam reads the :id route parameter. On failure it writes the
// 400 response itself and returns false.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid id.")
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads limit/page query parameters with the shared
// clamps: limit defaults to 20 and is capped at 50, page is at least 1.
func parsePagination(c *gin.Context) (page, limit, offset int) {
	page = positiveQueryInt(c, "page", 1)
	limit = positiveQueryInt(c, "limit", defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset = (page - 1) * limit
	return page, limit, offset
}

func positiveQueryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// textOrNil trims an optional string field, mapping empty to null.
func textOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// optionalText resolves a tri-state JSON string field against the stored
// value: absent keeps existing, explicit null or empty-after-trim clears,
// anything else replaces.
func optionalText(raw json.RawMessage, existing *string) (*string, error) {
	if len(raw) == 0 {
		return existing, nil
	}
	if string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return textOrNil(&s), nil
}

// parseRating resolves a tri-state JSON rating field: absent keeps
// existing, explicit null clears, otherwise the value must be an integer
// within the allowed bounds. ok is false when the value is out of range
// or not an integer.
func parseRating(raw json.RawMessage, existing *int) (rating *int, ok bool) {
	if len(raw) == 0 {
		return existing, true
	}
	if string(raw) == "null" {
		return nil, true
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	if v != math.Trunc(v) {
		return nil, false
	}
	n := int(v)
	if n < entities.MinRating || n > entities.MaxRating {
		return nil, false
	}
	return &n, true
}

// clampProgress coerces a progress value to a non-negative integer,
// falling back when the field is absent.
func clampProgress(v *float64, fallback int) int {
	if v == nil {
		return fallback
	}
	n := int(*v)
	if n < 0 {
		return 0
	}
	return n
}
