package messaging

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate checks that an inbound event carries the fields its kind needs
// before it reaches a handler.
func Validate(evt *IncomingEvent) error {
	if evt == nil {
		return fmt.Errorf("event is nil")
	}

	validateOnce.Do(func() {
		validate = validator.New()
	})

	err := validate.Struct(evt)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		parts := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			parts = append(parts, fmt.Sprintf("%s %s", fieldErr.Namespace(), fieldErr.Tag()))
		}
		return fmt.Errorf("invalid %s event: %s", evt.Kind, strings.Join(parts, "; "))
	}
	return fmt.Errorf("failed to validate event: %w", err)
}
