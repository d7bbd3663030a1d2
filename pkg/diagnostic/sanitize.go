package diagnostic

import (
	"os"
	"regexp"
	"strings"
)

var (
	homePattern  = regexp.MustCompile(`/home/[^/\s]+/`)
	usersPattern = regexp.MustCompile(`/Users/[^/\s]+/`)
	tokenPattern = regexp.MustCompile(`[A-Za-z0-9_-]{32,}`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	secretPatterns = []struct {
		pattern *regexp.Regexp
		replace string
	}{
		{regexp.MustCompile(`(?i)(API_KEY|APIKEY|API-KEY)\s*[=:]\s*[^\s]+`), "$1=[REDACTED]"},
		{regexp.MustCompile(`(?i)(TOKEN|AUTH_TOKEN|ACCESS_TOKEN)\s*[=:]\s*[^\s]+`), "$1=[REDACTED]"},
		{regexp.MustCompile(`(?i)(SECRET|SECRET_KEY|PRIVATE_KEY)\s*[=:]\s*[^\s]+`), "$1=[REDACTED]"},
		{regexp.MustCompile(`(?i)(PASSWORD|PASSWD)\s*[=:]\s*[^\s]+`), "$1=[REDACTED]"},
		{regexp.MustCompile(`(?i)(CREDENTIAL|CRED)\s*[=:]\s*[^\s]+`), "$1=[REDACTED]"},
		{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._-]+`), "bearer [REDACTED]"},
		{regexp.MustCompile(`(?i)authorization:\s*[^\n]+`), "authorization: [REDACTED]"},
		{regexp.MustCompile(`(?i)://([^:/\s]+):([^@/\s]+)@`), "://$1:[REDACTED]@"},
	}
)

// Sanitize removes home directories, credentials and long opaque tokens from
// free text that leaves the process, such as commit subjects.
func Sanitize(output string) string {
	if output == "" {
		return output
	}

	return redactSecrets(tokenPattern.ReplaceAllString(collapseHome(output), "[REDACTED]"))
}

// SanitizePath hides home directories and credentials in paths and
// path-like environment values. Long path components are kept intact.
func SanitizePath(value string) string {
	if value == "" {
		return value
	}

	return redactSecrets(collapseHome(value))
}

func collapseHome(s string) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" && home != "/" {
		s = strings.ReplaceAll(s, home, "~")
	}

	s = homePattern.ReplaceAllString(s, "~/")

	return usersPattern.ReplaceAllString(s, "~/")
}

func redactSecrets(s string) string {
	for _, sp := range secretPatterns {
		s = sp.pattern.ReplaceAllString(s, sp.replace)
	}

	return s
}

// RedactEmails replaces e-mail addresses with a placeholder.
func RedactEmails(s string) string {
	return emailPattern.ReplaceAllString(s, "[email]")
}
