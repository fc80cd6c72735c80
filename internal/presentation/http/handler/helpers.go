package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/enum"
	"github.com/sangkips/retailpos-api/pkg/apperror"
	"github.com/sangkips/retailpos-api/pkg/pagination"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserRole extracts the user role from the Gin context
func GetUserRole(c *gin.Context) string {
	return c.GetString("user_role")
}

// IsAdmin checks if the user has the admin role
func IsAdmin(c *gin.Context) bool {
	return GetUserRole(c) == enum.RoleAdmin
}

// requireUser returns the authenticated user id or reports 401
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID := GetUserID(c)
	if userID == nil {
		return uuid.Nil, false
	}
	return *userID, true
}

// parseUUIDParam parses a path parameter as a UUID
func parseUUIDParam(c *gin.Context, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequestError("Invalid " + resource + " ID")
	}
	return id, nil
}

// paginationFromQuery reads page and per_page query parameters
func paginationFromQuery(c *gin.Context) *pagination.Params {
	p := &pagination.Params{}
	p.Page, _ = strconv.Atoi(c.Query("page"))
	p.PerPage, _ = strconv.Atoi(c.Query("per_page"))
	p.Validate()
	return p
}

// dateFromQuery parses an optional YYYY-MM-DD query parameter. When endOfDay is
// set the returned time is the last instant of that day.
func dateFromQuery(c *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperror.NewAppError(http.StatusBadRequest, apperror.KindBadRequest, "Invalid "+name+", expected YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
