package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrMalformedName        = errors.New("malformed name")
	ErrExternalService      = errors.New("external service unavailable")
	ErrRequiredFetch        = errors.New("required fetch failed")
	ErrUnsupportedContainer = errors.New("unsupported container extension")
	ErrExternalTool         = errors.New("external tool error")
	ErrConfiguration        = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalService
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Category returns a short label for the marker carried by err, used in run
// reports and as the log event type.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRequiredFetch):
		return "required_fetch"
	case errors.Is(err, ErrMalformedName):
		return "malformed_name"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnsupportedContainer):
		return "unsupported_container"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalService):
		return "external_service"
	default:
		return "internal"
	}
}

// IsSoft reports whether err describes an absence the pipeline tolerates
// rather than a failure.
func IsSoft(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrUnsupportedContainer)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
