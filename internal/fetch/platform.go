// Package fetch - platform.go provides platform detection and profile URL helpers.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known profile source.
type Platform string

const (
	// PlatformGitHub is the code-hosting platform
	PlatformGitHub Platform = "github"
	// PlatformLinkedIn is the professional network
	PlatformLinkedIn Platform = "linkedin"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the profile platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(withScheme(urlStr))
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	if host == "github.com" || strings.HasSuffix(host, ".github.com") {
		return PlatformGitHub
	}

	if host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com") {
		return PlatformLinkedIn
	}

	return PlatformUnknown
}

// GitHubUsername accepts either a bare username or a github.com profile link
// and returns the username.
func GitHubUsername(input string) string {
	input = strings.TrimSpace(input)
	if idx := strings.LastIndex(input, "github.com/"); idx >= 0 {
		input = input[idx+len("github.com/"):]
	}
	input = strings.Trim(input, "/")
	if idx := strings.IndexAny(input, "/?#"); idx >= 0 {
		input = input[:idx]
	}
	return strings.TrimPrefix(input, "@")
}

// NormalizeProfileURL adds an https scheme when missing and trims whitespace.
func NormalizeProfileURL(urlStr string) string {
	return withScheme(strings.TrimSpace(urlStr))
}

func withScheme(urlStr string) string {
	if urlStr == "" || strings.Contains(urlStr, "://") {
		return urlStr
	}
	return "https://" + urlStr
}
