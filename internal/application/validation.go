package application

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"
)

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

func isValidEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	return addr.Address == value && strings.Contains(value[strings.LastIndex(value, "@"):], ".")
}

// isValidURL accepts absolute http and https URLs.
func isValidURL(value string) bool {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func isValidPhone(value string) bool {
	if len(value) != 10 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func oneOf(value string, allowed ...string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}

func tooLong(value string, limit int) bool {
	return utf8.RuneCountInString(value) > limit
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func stringPtr(value string) *string {
	return &value
}
