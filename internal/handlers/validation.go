package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/nandakumarbm26/Products-RestAPI/pkg/errors"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/response"
	appValidator "github.com/nandakumarbm26/Products-RestAPI/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return false
	}

	return true
}

func formatValidationError(err error) string {
	if err == nil {
		return "invalid request payload"
	}

	var ve appValidator.ValidationErrors
	if errors.As(err, &ve) {
		if len(ve) == 0 {
			return "invalid request payload"
		}
		return strings.Join(ve.Messages(), "; ")
	}

	return "invalid request payload"
}

// parsePositiveIntQuery reads an optional positive integer query parameter.
func parsePositiveIntQuery(c *gin.Context, key string, fallback int) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return 0, appErrors.NewBadRequest(fmt.Sprintf("%s must be a positive integer", key))
	}
	return parsed, nil
}

// parseInt64Query reads an optional integer query parameter. A missing value yields nil.
func parseInt64Query(c *gin.Context, key string) (*int64, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, appErrors.NewBadRequest(fmt.Sprintf("%s must be an integer", key))
	}
	return &parsed, nil
}

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c *gin.Context, key string) (uint64, error) {
	value := strings.TrimSpace(c.Param(key))
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, appErrors.NewBadRequest(fmt.Sprintf("%s must be a positive integer", key))
	}
	return id, nil
}
