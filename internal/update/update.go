// Package update checks the daemon's own releases so operators see a log line
// when a newer build exists. The daemon never replaces its running binary.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/command"
)

// Release represents a GitHub release
type Release struct {
	TagName string `json:"tagName"`
}

// CheckForUpdate queries GitHub releases and returns latest if newer than current
func CheckForUpdate(ctx context.Context, runner command.Runner, dir, currentVersion, repo string) (*Release, error) {
	res, err := runner.Run(ctx, dir, "gh", "release", "list",
		"--repo", repo,
		"--json", "tagName",
		"--limit", "1",
	)
	if err != nil {
		return nil, fmt.Errorf("gh release list: %w", err)
	}

	var releases []Release
	if err := json.Unmarshal([]byte(strings.TrimSpace(res.Stdout)), &releases); err != nil {
		return nil, fmt.Errorf("parse releases: %w", err)
	}

	if len(releases) == 0 {
		return nil, nil
	}

	latest := &releases[0]

	latestVer := normalizeVersion(latest.TagName)
	currentVer := normalizeVersion(currentVersion)

	// "dev" version is always older than any release
	if currentVer == "dev" {
		return latest, nil
	}

	// Simple string comparison works for semver if format is consistent
	if latestVer > currentVer {
		return latest, nil
	}

	return nil, nil
}

// normalizeVersion strips version prefixes for comparison
func normalizeVersion(v string) string {
	v = strings.TrimPrefix(v, "scraperd/")
	v = strings.TrimPrefix(v, "v")
	return v
}
