package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}

func TestRedactKey(t *testing.T) {
	assert.Equal(t, "abc1***-us14", RedactKey("abc123def456-us14"))
	assert.Equal(t, "abc1***", RedactKey("abc123"))
	assert.Equal(t, "ab***", RedactKey("ab"))
	assert.Equal(t, "", RedactKey(""))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel(" error "))
	assert.Equal(t, INFO, ParseLevel(""))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}

func TestRedactValueByFieldName(t *testing.T) {
	assert.Equal(t, "abc1***-us14", redactValue("api_key", "abc123def456-us14"))
	assert.Equal(t, "abc1***-us14", redactValue("mailchimp_apikey", "abc123def456-us14"))
	assert.Equal(t, "jo***@example.com", redactValue("recipient", "john@example.com"))
	assert.Equal(t, "sent to jo***@example.com ok", redactValue("detail", "sent to john@example.com ok"))
	assert.Equal(t, "plain value", redactValue("detail", "plain value"))
}
