package tools

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ValidationError reports a rejected input field. It is raised before
// any request is built, so a failing call never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

var campaignStatuses = map[string]bool{
	"draft":     true,
	"scheduled": true,
	"sending":   true,
	"sent":      true,
	"paused":    true,
}

func requireField(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

func validateEmail(addr, field string) error {
	if _, err := mail.ParseAddress(addr); err != nil {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be a valid email address, got %q", addr)}
	}
	return nil
}

func validateStatus(status string) error {
	if status == "" {
		return nil
	}
	if !campaignStatuses[status] {
		return &ValidationError{Field: "status", Reason: "must be one of draft, scheduled, sending, sent, paused"}
	}
	return nil
}

// validateCount resolves an optional count against its bounds. A nil
// count means the caller omitted it and gets the default; an explicit
// out-of-range value is rejected, not clamped.
func validateCount(count *int, def, min, max int) (int, error) {
	if count == nil {
		return def, nil
	}
	if *count < min || *count > max {
		return 0, &ValidationError{Field: "count", Reason: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return *count, nil
}

func validateScheduleTime(value string) error {
	if err := requireField(value, "schedule_time"); err != nil {
		return err
	}
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		return &ValidationError{Field: "schedule_time", Reason: "must be an RFC 3339 timestamp, e.g. 2026-03-01T15:00:00Z"}
	}
	return nil
}

func validateTestEmails(emails []string) error {
	if len(emails) < 1 || len(emails) > 5 {
		return &ValidationError{Field: "emails", Reason: "must contain between 1 and 5 addresses"}
	}
	for _, addr := range emails {
		if _, err := mail.ParseAddress(addr); err != nil {
			return &ValidationError{Field: "emails", Reason: fmt.Sprintf("contains an invalid address: %q", addr)}
		}
	}
	return nil
}

func validateSendType(sendType string) (string, error) {
	switch sendType {
	case "":
		return "html", nil
	case "html", "plaintext":
		return sendType, nil
	default:
		return "", &ValidationError{Field: "send_type", Reason: "must be html or plaintext"}
	}
}
