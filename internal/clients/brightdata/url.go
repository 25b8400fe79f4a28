package brightdata

import (
	"net/url"
	"strings"
)

// ValidateJobURL accepts LinkedIn job pages: postings as well as search and
// collection links that select a posting with currentJobId.
func ValidateJobURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ErrInvalidURL
	}

	lower := strings.ToLower(rawURL)
	if !strings.Contains(lower, "linkedin.com") || !strings.Contains(lower, "/jobs/") {
		return ErrInvalidURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}

	return nil
}
