// Package version parses and increments the Vx / Vx.y version token
// that leads a manifest's first line, the exact rule
// original_source/src/version.c's parse_version_from_file and
// calculate_next_version implement.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed Vx or Vx.y token.
type Version struct {
	Major int
	Minor int // 0 means "no minor component", i.e. a bare Vx.
}

// String renders the token back, e.g. "V2" or "V2.3".
func (v Version) String() string {
	if v.Minor == 0 {
		return fmt.Sprintf("V%d", v.Major)
	}
	return fmt.Sprintf("V%d.%d", v.Major, v.Minor)
}

// Initial is the version assigned to the very first snapshot.
var Initial = Version{Major: 1}

// Parse reads a leading Vx or Vx.y token from line. Anything
// unrecognized (missing file, malformed token, no leading "V") yields
// Initial, matching the original's "unrecognized -> V1" fallback.
func Parse(line string) Version {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "V") {
		return Initial
	}
	token := line[1:]
	if sp := strings.IndexAny(token, " \t\n"); sp >= 0 {
		token = token[:sp]
	}

	major, minor, ok := splitToken(token)
	if !ok {
		return Initial
	}
	return Version{Major: major, Minor: minor}
}

func splitToken(token string) (major, minor int, ok bool) {
	parts := strings.SplitN(token, ".", 2)
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 {
		return 0, 0, false
	}
	if len(parts) == 1 {
		return m, 0, true
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 0 {
		return 0, 0, false
	}
	return m, n, true
}

// Next applies the increment rule: Vx.y -> Vx.(y+1); bare Vx -> Vx.1.
func Next(v Version) Version {
	if v.Minor == 0 {
		return Version{Major: v.Major, Minor: 1}
	}
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// HasMinor reports whether v carries a minor component, which decides
// whether a diff file path is produced at all: the orchestrator only
// emits a diff when the new version has a minor part.
func (v Version) HasMinor() bool { return v.Minor != 0 }
