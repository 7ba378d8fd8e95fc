package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/benvon/plume/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Report failures under their JSON names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := Validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("failed to register notblank validator: %v", err))
	}
	if err := Validate.RegisterValidation("provider", validateProvider); err != nil {
		panic(fmt.Sprintf("failed to register provider validator: %v", err))
	}
	if err := Validate.RegisterValidation("history_kind", validateHistoryKind); err != nil {
		panic(fmt.Sprintf("failed to register history_kind validator: %v", err))
	}
}

// ValidationError reports malformed or missing client input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// Struct validates s with the shared validator and converts the first
// failure into a ValidationError named after the field's JSON key.
func Struct(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	field := jsonFieldName(fe.Namespace())
	switch fe.Tag() {
	case "required", "notblank":
		return NewValidationError(field, "is required")
	case "provider":
		return NewValidationError(field, "unknown provider %q", fe.Value())
	case "history_kind":
		return NewValidationError(field, "unknown history kind %q", fe.Value())
	case "max":
		return NewValidationError(field, "must be at most %s characters", fe.Param())
	case "oneof":
		return NewValidationError(field, "must be one of: %s", fe.Param())
	default:
		return NewValidationError(field, "failed %q validation", fe.Tag())
	}
}

// jsonFieldName drops the struct name: "reformulateRequest.text" becomes "text"
func jsonFieldName(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validateProvider(fl validator.FieldLevel) bool {
	return models.Provider(fl.Field().String()).Valid()
}

func validateHistoryKind(fl validator.FieldLevel) bool {
	return models.HistoryKind(fl.Field().String()).Valid()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateProvider validates a provider name
func ValidateProvider(value string) (models.Provider, error) {
	p, err := models.ParseProvider(value)
	if err != nil {
		return "", NewValidationError("provider", "unknown provider %q (must be one of %s)", value, providerList())
	}
	return p, nil
}

func providerList() string {
	names := make([]string, 0, len(models.AllProviders()))
	for _, p := range models.AllProviders() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
