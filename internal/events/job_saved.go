package events

var JobSavedTopic = "JobSavedEvent"

type JobSaved struct {
	UserID       string
	JobPostingID string
	Created      bool
}
