package watcher

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// Aliases become DNS names on the target network, so they must be valid
// hostname labels or the engine rejects the connect call.
var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,62}[a-zA-Z0-9])?$`)

// SanitizeAlias returns candidate if it can serve as a network alias, or
// fallback (the container name) when it cannot. Candidates are capped at 64
// characters and trimmed before validation.
func SanitizeAlias(candidate, fallback string) string {
	if len(candidate) > 64 {
		candidate = candidate[:64]
	}
	candidate = strings.TrimSpace(candidate)
	if aliasPattern.MatchString(candidate) {
		return candidate
	}
	log.Debug("Alias is not a valid hostname, using container name",
		"alias", candidate, "fallback", fallback)
	return fallback
}
