package jobdata

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	FieldIsFallback = "is_fallback"
	FieldSaved      = "saved"
)

// FallbackRecord builds a displayable placeholder for a job URL whose data could not be stored.
func FallbackRecord(jobURL string, reason string, now time.Time) Record {
	record := Record{
		FieldPostingID:  fallbackPostingID(jobURL, now),
		FieldURL:        jobURL,
		FieldTitle:      PlaceholderTitle,
		FieldCompany:    PlaceholderCompany,
		FieldLocation:   PlaceholderLocation,
		FieldCreatedAt:  now.UTC().Format(time.RFC3339),
		FieldIsFallback: true,
		FieldSaved:      false,
	}
	if reason != "" {
		record[FieldSummary] = "Job details could not be retrieved: " + reason
	}
	return record
}

// fallbackPostingID prefers the segment after /view/, then the currentJobId query
// parameter of search and collection links, then a timestamp.
func fallbackPostingID(jobURL string, now time.Time) string {
	path := jobURL
	var query url.Values
	if parsed, err := url.Parse(jobURL); err == nil {
		path = parsed.Path
		query = parsed.Query()
	}

	if _, rest, found := strings.Cut(path, "/view/"); found {
		segment, _, _ := strings.Cut(rest, "/")
		if segment != "" {
			return segment
		}
	}

	if jobID := strings.TrimSpace(query.Get("currentJobId")); jobID != "" {
		return jobID
	}

	return "job-" + strconv.FormatInt(now.UnixMilli(), 10)
}
