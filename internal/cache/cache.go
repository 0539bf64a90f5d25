// Package cache provides centralized cache directory resolution for stateview.
//
// Priority order: --cache-dir flag > STATEVIEW_CACHE_DIR env > ~/.stateview default.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
)

// EnvCacheDir names the environment variable that overrides the cache root.
const EnvCacheDir = "STATEVIEW_CACHE_DIR"

var global struct {
	version    string
	rawVersion string
	cacheDir   string
}

// SetGlobal initializes the cache resolver with the CLI version.
// This should be called at startup from root.go.
func SetGlobal(version string) {
	global.rawVersion = strings.TrimSpace(version)
	global.version = NormalizeVersion(version)
}

// NormalizeVersion returns a clean release version, or empty if the version
// is not a valid release (e.g., dev builds, pseudo-versions from go install).
// Explicit prerelease tags (v0.2.0-rc1) are allowed.
//
// Examples:
//
//	"v0.1.0"                          -> "v0.1.0"
//	"0.1.0"                           -> "v0.1.0"
//	"stateview-v0.1.0"                -> "v0.1.0"
//	"v0.2.0-rc1"                      -> "v0.2.0-rc1" (prerelease allowed)
//	"0.1.0-dev"                       -> "" (dev build)
//	"v0.2.1-0.20260122153045-abc123"  -> "" (pseudo-version)
//	"v1.2"                            -> "" (not X.Y.Z)
func NormalizeVersion(version string) string {
	version = strings.TrimPrefix(strings.TrimSpace(version), "stateview-")
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}

	if !semver.IsValid(version) || semver.Build(version) != "" {
		return ""
	}
	// semver accepts "v1" and "v1.2" as shorthands; releases are always full.
	if semver.Canonical(version) != version {
		return ""
	}

	pre := semver.Prerelease(version)
	if pre == "-dev" || strings.HasPrefix(pre, "-0.") {
		return ""
	}
	return version
}

// Version returns the normalized CLI version, or the raw one for non-release
// builds.
func Version() string {
	if global.version != "" {
		return global.version
	}
	return global.rawVersion
}

// SetCacheDir sets an override for the cache directory.
// This is typically called when parsing the --cache-dir flag.
func SetCacheDir(dir string) {
	global.cacheDir = dir
}

// Root returns the cache root directory.
// Priority: --cache-dir flag > STATEVIEW_CACHE_DIR env > ~/.stateview default.
func Root() (string, error) {
	if global.cacheDir != "" {
		return global.cacheDir, nil
	}

	if envDir := os.Getenv(EnvCacheDir); envDir != "" {
		return envDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, ".stateview"), nil
}

// AvatarDir returns the directory holding scaled profile pictures.
// Returns: <cache_root>/avatars/<size>
func AvatarDir(size int) (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "avatars", fmt.Sprint(size)), nil
}
