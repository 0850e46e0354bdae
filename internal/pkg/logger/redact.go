package logger

import "strings"

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactKey masks an API credential, keeping the region suffix visible.
// "abc123def456-us14" → "abc1***-us14"
// Keys without a region suffix keep only the first 4 chars: "abc123" → "abc1***"
func RedactKey(key string) string {
	if key == "" {
		return ""
	}
	suffix := ""
	if i := strings.LastIndex(key, "-"); i >= 0 {
		suffix = key[i:]
		key = key[:i]
	}
	if len(key) > 4 {
		key = key[:4]
	}
	return key + "***" + suffix
}
