package antispam

import (
	"regexp"
	"strings"

	"sweeper/internal/storage"

	"go.uber.org/zap"
)

// Matcher classifies a resolved URL against the configured service patterns.
// Patterns are admin-supplied and untrusted; regexp's linear-time engine
// bounds evaluation cost, and a pattern that fails to compile is skipped for
// the cycle rather than taking the pipeline down.
type Matcher struct {
	services []compiledService
}

type compiledService struct {
	id   int64
	name string
	re   *regexp.Regexp
}

type Match struct {
	ServiceID   int64
	ServiceName string
	Text        string
}

func NewMatcher(rows []storage.SpamService, logger *zap.Logger) *Matcher {
	services := make([]compiledService, 0, len(rows))
	for _, row := range rows {
		if !row.Enabled || row.Regex == "" {
			continue
		}
		re, err := regexp.Compile(row.Regex)
		if err != nil {
			logger.Warn("invalid service pattern skipped",
				zap.Int64("service_id", row.ID), zap.String("service", row.Name), zap.Error(err))
			continue
		}
		services = append(services, compiledService{id: row.ID, name: row.Name, re: re})
	}
	return &Matcher{services: services}
}

// Match tests the URL against each service in stored order; the first match
// wins. A URL that matches nothing passes through untouched.
func (m *Matcher) Match(url string) (Match, bool) {
	for _, svc := range m.services {
		if found := svc.re.FindString(url); found != "" {
			return Match{ServiceID: svc.id, ServiceName: svc.name, Text: found}, true
		}
	}
	return Match{}, false
}

func (m *Matcher) Len() int {
	return len(m.services)
}

// IsInviteService reports whether a match needs its invite code resolved to
// a guild id before rules run.
func IsInviteService(match Match) bool {
	return match.ServiceID == 1 || strings.EqualFold(match.ServiceName, "discord")
}

// InviteCode extracts the trailing path segment of an invite match, the part
// the platform resolves to a guild.
func InviteCode(matchText string) string {
	parts := strings.Split(matchText, "/")
	return parts[len(parts)-1]
}
