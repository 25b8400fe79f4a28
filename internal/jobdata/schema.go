package jobdata

import (
	"github.com/samber/lo"
	"slices"
)

type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumber
	KindBool
	KindTimestamp
	KindJSON
	KindArray
)

// jobColumns lists every column of the jobs table that scraped data may fill.
// user_id is owned by the store and is never taken from scraped data.
var jobColumns = map[string]ColumnKind{
	FieldURL:                    KindText,
	FieldPostingID:              KindText,
	FieldTitle:                  KindText,
	FieldCompany:                KindText,
	"company_id":                KindText,
	"company_url":               KindText,
	"company_logo":              KindText,
	FieldLocation:               KindText,
	FieldSummary:                KindText,
	"job_description_formatted": KindText,
	"job_seniority_level":       KindText,
	"job_function":              KindText,
	"job_employment_type":       KindText,
	FieldWorkType:               KindText,
	FieldIndustries:             KindArray,
	FieldCompanyIndustry:        KindText,
	"job_base_pay_range":        KindText,
	"base_salary":               KindJSON,
	FieldApplicantCount:         KindNumber,
	"apply_link":                KindText,
	"application_availability":  KindBool,
	"country_code":              KindText,
	"title_id":                  KindText,
	"job_posted_time":           KindText,
	FieldPostedTimeAgo:          KindText,
	"job_posted_date":           KindTimestamp,
	"job_poster":                KindJSON,
	"requirements":              KindJSON,
	"qualifications":            KindJSON,
	"discovery_input":           KindJSON,
	FieldCreatedAt:              KindTimestamp,
	FieldUpdatedAt:              KindTimestamp,
}

// Columns returns the sorted column allow-list.
func Columns() []string {
	columns := lo.Keys(jobColumns)
	slices.Sort(columns)
	return columns
}

func KindOf(column string) (ColumnKind, bool) {
	kind, ok := jobColumns[column]
	return kind, ok
}

func columnsOfKind(kind ColumnKind) []string {
	return lo.Filter(Columns(), func(column string, _ int) bool {
		return jobColumns[column] == kind
	})
}
