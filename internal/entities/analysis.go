package entities

import "time"

// Analysis is a stored résumé review; Feedback holds the full recommendations as JSON.
type Analysis struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"index;not null" json:"user_id"`
	JobPostingID string    `gorm:"index" json:"job_posting_id"`
	JobTitle     string    `json:"job_title"`
	OverallScore int       `json:"overall_score"`
	ATSScore     int       `json:"ats_score"`
	Summary      string    `gorm:"type:text" json:"summary"`
	Feedback     string    `gorm:"type:text" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
