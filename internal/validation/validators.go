package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/stillmind/wellbeing-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("schedule_type", validateScheduleType); err != nil {
		panic(fmt.Sprintf("failed to register schedule_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("alert_type", validateAlertType); err != nil {
		panic(fmt.Sprintf("failed to register alert_type validator: %v", err))
	}
}

// validateScheduleType validates that a string is a valid ScheduleType enum value
func validateScheduleType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.ScheduleType(value) {
	case models.ScheduleTypeFixed, models.ScheduleTypeAdaptive:
		return true
	default:
		return false
	}
}

// validateAlertType validates that a string is a valid AlertType enum value
func validateAlertType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.AlertType(value) {
	case models.AlertStressSpike, models.AlertMoodDecline, models.AlertAnxietyPeak,
		models.AlertEnergyCrash, models.AlertFocusDrop:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
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

// ValidateScheduleType validates a ScheduleType string value
func ValidateScheduleType(value string) error {
	switch models.ScheduleType(value) {
	case models.ScheduleTypeFixed, models.ScheduleTypeAdaptive:
		return nil
	default:
		return fmt.Errorf("invalid schedule_type: %s (must be 'fixed' or 'adaptive')", value)
	}
}

// ValidateRating validates a 1-5 scalar rating
func ValidateRating(field string, value float64) error {
	if value < 1 || value > 5 {
		return fmt.Errorf("invalid %s: %g (must be between 1 and 5)", field, value)
	}
	return nil
}

// ValidateTimeSlot validates an HH:MM time slot string
func ValidateTimeSlot(value string) error {
	if len(value) != 5 || value[2] != ':' {
		return fmt.Errorf("invalid time slot: %s (must be HH:MM)", value)
	}
	hour := int(value[0]-'0')*10 + int(value[1]-'0')
	minute := int(value[3]-'0')*10 + int(value[4]-'0')
	for _, c := range []byte{value[0], value[1], value[3], value[4]} {
		if c < '0' || c > '9' {
			return fmt.Errorf("invalid time slot: %s (must be HH:MM)", value)
		}
	}
	if hour > 23 || minute > 59 {
		return fmt.Errorf("invalid time slot: %s (must be HH:MM)", value)
	}
	return nil
}
