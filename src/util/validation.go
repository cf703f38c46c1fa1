package util

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt ignores everything past 72 bytes
	MaxNameLength     = 100
	MaxDescLength     = 255
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims and lowercases an address so lookups and the unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

func ValidateName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && utf8.RuneCountInString(name) <= MaxNameLength
}

func ValidatePassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength && len(password) <= MaxPasswordLength
}

func ValidateDescription(desc string) bool {
	desc = strings.TrimSpace(desc)
	return desc != "" && utf8.RuneCountInString(desc) <= MaxDescLength
}

func ValidateAvatarURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ParseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD day (taken as midnight UTC).
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
