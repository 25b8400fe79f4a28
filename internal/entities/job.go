package entities

import "time"

// Job is a stored job posting, unique per (JobPostingID, UserID).
type Job struct {
	ID                      uint        `gorm:"primaryKey" json:"-"`
	JobPostingID            string      `gorm:"not null;uniqueIndex:idx_job_posting_user" json:"job_posting_id"`
	UserID                  string      `gorm:"not null;uniqueIndex:idx_job_posting_user" json:"user_id"`
	URL                     string      `json:"url"`
	JobTitle                string      `gorm:"not null" json:"job_title"`
	CompanyName             string      `gorm:"not null" json:"company_name"`
	CompanyID               string      `json:"company_id,omitempty"`
	CompanyURL              string      `json:"company_url,omitempty"`
	CompanyLogo             string      `json:"company_logo,omitempty"`
	JobLocation             string      `gorm:"not null" json:"job_location"`
	JobSummary              string      `gorm:"type:text" json:"job_summary,omitempty"`
	JobDescriptionFormatted string      `gorm:"type:text" json:"job_description_formatted,omitempty"`
	JobSeniorityLevel       string      `json:"job_seniority_level,omitempty"`
	JobFunction             string      `json:"job_function,omitempty"`
	JobEmploymentType       string      `json:"job_employment_type,omitempty"`
	JobWorkType             string      `json:"job_work_type,omitempty"`
	JobIndustries           StringArray `gorm:"type:text" json:"job_industries"`
	CompanyIndustry         string      `json:"company_industry,omitempty"`
	JobBasePayRange         string      `json:"job_base_pay_range,omitempty"`
	BaseSalary              string      `gorm:"type:text" json:"base_salary,omitempty"`
	ApplicantCount          *float64    `json:"applicant_count,omitempty"`
	ApplyLink               string      `json:"apply_link,omitempty"`
	ApplicationAvailability *bool       `json:"application_availability,omitempty"`
	CountryCode             string      `json:"country_code,omitempty"`
	TitleID                 string      `json:"title_id,omitempty"`
	JobPostedTime           string      `json:"job_posted_time,omitempty"`
	JobPostedTimeAgo        string      `json:"job_posted_time_ago,omitempty"`
	JobPostedDate           *time.Time  `json:"job_posted_date,omitempty"`
	JobPoster               string      `gorm:"type:text" json:"job_poster,omitempty"`
	Requirements            string      `gorm:"type:text" json:"requirements,omitempty"`
	Qualifications          string      `gorm:"type:text" json:"qualifications,omitempty"`
	DiscoveryInput          string      `gorm:"type:text" json:"discovery_input,omitempty"`
	CreatedAt               *time.Time  `gorm:"autoCreateTime:false" json:"created_at,omitempty"`
	UpdatedAt               *time.Time  `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}
