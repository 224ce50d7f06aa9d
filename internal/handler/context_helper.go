package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentUser(c)
}

// requireTermID reads the mandatory termId query parameter.
func requireTermID(c *gin.Context) (string, error) {
	termID := strings.TrimSpace(c.Query("termId"))
	if termID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "termId query parameter is required")
	}
	return termID, nil
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
