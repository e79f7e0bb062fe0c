package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"task-tracker/internal/service"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 1000

	taskInputKey = "taskInput"
)

var validate = validator.New()

// FieldError is one violated input rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateTaskFields checks a decoded create request. fields holds the raw
// values by name; a missing key means the field was not sent. All violations
// are reported, not just the first.
func ValidateTaskFields(fields map[string]any) (service.CreateTaskInput, []FieldError) {
	var (
		in   service.CreateTaskInput
		errs []FieldError
	)

	switch title := fields["title"].(type) {
	case nil:
		errs = append(errs, FieldError{"title", "Title is required"})
	case string:
		trimmed := strings.TrimSpace(title)
		switch {
		case title == "":
			errs = append(errs, FieldError{"title", "Title is required"})
		case trimmed == "":
			errs = append(errs, FieldError{"title", "Title cannot be empty"})
		case validate.Var(trimmed, "max=255") != nil:
			errs = append(errs, FieldError{"title", "Title cannot exceed 255 characters"})
		default:
			in.Title = trimmed
		}
	default:
		errs = append(errs, FieldError{"title", "Title must be a string"})
	}

	if raw, sent := fields["description"]; sent {
		// An explicit null is sent but not a string.
		switch desc := raw.(type) {
		case string:
			if validate.Var(desc, "max=1000") != nil {
				errs = append(errs, FieldError{"description", "Description cannot exceed 1000 characters"})
			} else {
				in.Description = &desc
			}
		default:
			errs = append(errs, FieldError{"description", "Description must be a string"})
		}
	}

	return in, errs
}

// ValidateTask rejects malformed create bodies before they reach the handler
// and stores the parsed input for TaskInput.
func ValidateTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields map[string]any
		if err := json.NewDecoder(c.Request.Body).Decode(&fields); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Validation failed",
				"errors":  []FieldError{{"body", "Request body must be a JSON object"}},
			})
			return
		}
		in, errs := ValidateTaskFields(fields)
		if len(errs) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Validation failed",
				"errors":  errs,
			})
			return
		}
		c.Set(taskInputKey, in)
		c.Next()
	}
}

// TaskInput returns the input stored by ValidateTask.
func TaskInput(c *gin.Context) (service.CreateTaskInput, bool) {
	v, ok := c.Get(taskInputKey)
	if !ok {
		return service.CreateTaskInput{}, false
	}
	in, ok := v.(service.CreateTaskInput)
	return in, ok
}
