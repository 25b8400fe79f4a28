// Package jobdata turns loosely-typed job posting payloads into rows the job store accepts.
package jobdata

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is a job posting keyed by field name. Functions in this package never
// mutate a Record they receive; they build a new one.
type Record map[string]any

const (
	FieldPostingID       = "job_posting_id"
	FieldTitle           = "job_title"
	FieldCompany         = "company_name"
	FieldLocation        = "job_location"
	FieldURL             = "url"
	FieldSummary         = "job_summary"
	FieldIndustries      = "job_industries"
	FieldCompanyIndustry = "company_industry"
	FieldApplicantCount  = "applicant_count"
	FieldCreatedAt       = "created_at"
	FieldUpdatedAt       = "updated_at"
	FieldWorkType        = "job_work_type"
	FieldPostedTimeAgo   = "job_posted_time_ago"
)

var postingIDKeys = []string{FieldPostingID, "posting_id"}

func (r Record) Clone() Record {
	clone := make(Record, len(r))
	for key, value := range r {
		clone[key] = value
	}
	return clone
}

// PostingID returns the posting id as text, empty when the record has none.
func (r Record) PostingID() string {
	return stringValue(r[FieldPostingID])
}

func (r Record) String(key string) string {
	return stringValue(r[key])
}

func looksLikeRecord(m map[string]any) bool {
	for _, key := range postingIDKeys {
		if stringValue(m[key]) != "" {
			return true
		}
	}
	return false
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
