package jobdata

import (
	"encoding/json"
	"fmt"
	"github.com/samber/lo"
	"strings"
	"time"
)

type alias struct {
	from string
	to   string
}

// fieldAliases maps source field names onto canonical columns. Order matters only
// when several aliases of one column are present; the first one wins.
var fieldAliases = []alias{
	{from: "posting_id", to: FieldPostingID},
	{from: "job_num_applicants", to: FieldApplicantCount},
	{from: "num_applicants", to: FieldApplicantCount},
	{from: "industries", to: FieldIndustries},
	{from: "job_industry", to: FieldIndustries},
	{from: "salary", to: "base_salary"},
	{from: "job_poster_info", to: "job_poster"},
	{from: "employment_type", to: "job_employment_type"},
}

// derivedFields fill a second column from a source column that is kept as is.
var derivedFields = []alias{
	{from: "job_employment_type", to: FieldWorkType},
	{from: "job_posted_time", to: FieldPostedTimeAgo},
}

type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize renames aliased fields, canonicalizes industries and stamps created_at.
// Unknown fields and nested objects pass through untouched.
func (n *Normalizer) Normalize(record Record) Record {
	normalized := record.Clone()

	for _, a := range fieldAliases {
		value, ok := normalized[a.from]
		if !ok {
			continue
		}
		if isBlank(normalized[a.to]) {
			normalized[a.to] = value
		}
		delete(normalized, a.from)
	}

	for _, d := range derivedFields {
		if value := normalized[d.from]; !isBlank(value) && isBlank(normalized[d.to]) {
			normalized[d.to] = value
		}
	}

	if value, ok := normalized[FieldIndustries]; ok {
		if industries, err := parseStringList(value); err == nil {
			normalized[FieldIndustries] = industries
			if len(industries) > 0 {
				normalized[FieldCompanyIndustry] = strings.Join(industries, ", ")
			}
		}
	}

	if isBlank(normalized[FieldCreatedAt]) {
		normalized[FieldCreatedAt] = n.now().UTC().Format(time.RFC3339)
	}

	return normalized
}

// parseStringList accepts a comma separated string, a JSON encoded list or a list
// and returns trimmed, non-empty, deduplicated names in their original order.
func parseStringList(value any) ([]string, error) {
	var items []string

	switch v := value.(type) {
	case nil:
		return []string{}, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") {
			var decoded []any
			if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
				return nil, fmt.Errorf("value is not a valid json list: %w", err)
			}
			return parseStringList(decoded)
		}
		items = strings.Split(trimmed, ",")
	case []string:
		items = v
	case []any:
		for _, item := range v {
			text, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("list contains a non-string value %v", item)
			}
			items = append(items, text)
		}
	default:
		return nil, fmt.Errorf("unsupported list type %T", value)
	}

	items = lo.Map(items, func(item string, _ int) string { return strings.TrimSpace(item) })
	items = lo.Compact(items)
	return lo.Uniq(items), nil
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}
