package services

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/maxaizer/cv-matcher/internal/entities"
	"github.com/maxaizer/cv-matcher/internal/logger"
	"github.com/maxaizer/cv-matcher/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrEmptyResume       = errors.New("resume text is empty")
	ErrMissingJobDetails = errors.New("job_posting_id or job_details is required")
	ErrInvalidJobDetails = errors.New("job details are invalid")
	ErrJobNotFound       = errors.New("job posting not found")
	ErrMalformedFeedback = errors.New("model returned malformed feedback")
)

const maxResumeRunes = 30000

type aiClient interface {
	GenerateResponse(ctx context.Context, request string) (string, error)
}

type jobProvider interface {
	GetJob(ctx context.Context, userID string, postingID string) (*entities.Job, error)
}

type analysisRepository interface {
	Add(ctx context.Context, analysis *entities.Analysis) error
	GetByUser(ctx context.Context, userID string, limit int) ([]entities.Analysis, error)
}

// AnalysisRequest targets either a stored posting or hand-entered job details; the posting wins.
type AnalysisRequest struct {
	ResumeText   string
	JobPostingID string
	JobDetails   *JobDetails
}

type Feedback struct {
	ID           string    `json:"id"`
	JobPostingID string    `json:"job_posting_id,omitempty"`
	JobTitle     string    `json:"job_title,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Recommendations
}

type AnalysisService struct {
	aiClient  aiClient
	jobs      jobProvider
	analyses  analysisRepository
	validator *validator.Validate
	now       func() time.Time
}

func NewAnalysisService(aiClient aiClient, jobs jobProvider, analyses analysisRepository) *AnalysisService {
	return &AnalysisService{
		aiClient:  aiClient,
		jobs:      jobs,
		analyses:  analyses,
		validator: validator.New(),
		now:       time.Now,
	}
}

// Analyze asks the model to review the résumé against the target position and stores the result.
func (a *AnalysisService) Analyze(ctx context.Context, userID string, request AnalysisRequest) (*Feedback, error) {

	resumeText := strings.TrimSpace(request.ResumeText)
	if resumeText == "" {
		return nil, ErrEmptyResume
	}

	details, err := a.jobDetails(ctx, userID, request)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := a.aiClient.GenerateResponse(ctx, analysisPrompt(resumeText, details))
	metrics.PipelineStepDuration.WithLabelValues("analysis").Observe(time.Since(start).Seconds())
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).Errorf("failed to analyze resume: %v", err)
		metrics.AnalysesCounter.WithLabelValues("ai_error").Inc()
		return nil, err
	}

	recommendations, err := a.parseRecommendations(response)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).Errorf("unexpected response %q: %v", response, err)
		metrics.AnalysesCounter.WithLabelValues("malformed").Inc()
		return nil, err
	}

	feedback := &Feedback{
		ID:              uuid.NewString(),
		JobPostingID:    request.JobPostingID,
		JobTitle:        details.Title,
		CreatedAt:       a.now().UTC(),
		Recommendations: *recommendations,
	}

	if err = a.save(ctx, userID, feedback); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to save analysis: %v", err)
		metrics.AnalysesCounter.WithLabelValues("db_error").Inc()
		return nil, err
	}

	metrics.AnalysesCounter.WithLabelValues("success").Inc()
	log.Infof("analysis %v created for user %v, score %d, ats %d", feedback.ID, userID,
		feedback.OverallScore.Score, feedback.ATSCompatibility.Score)
	return feedback, nil
}

func (a *AnalysisService) GetAnalyses(ctx context.Context, userID string, limit int) ([]Feedback, error) {
	stored, err := a.analyses.GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	result := make([]Feedback, 0, len(stored))
	for _, analysis := range stored {
		feedback := Feedback{
			ID:           analysis.ID,
			JobPostingID: analysis.JobPostingID,
			JobTitle:     analysis.JobTitle,
			CreatedAt:    analysis.CreatedAt,
		}
		if err = json.Unmarshal([]byte(analysis.Feedback), &feedback.Recommendations); err != nil {
			log.Warnf("analysis %v has unreadable recommendations: %v", analysis.ID, err)
			feedback.OverallScore = ScoredVerdict{Score: analysis.OverallScore, Explanation: analysis.Summary}
			feedback.ATSCompatibility = ScoredVerdict{Score: analysis.ATSScore}
		}
		result = append(result, feedback)
	}
	return result, nil
}

func (a *AnalysisService) jobDetails(ctx context.Context, userID string, request AnalysisRequest) (JobDetails, error) {
	if request.JobPostingID != "" {
		job, err := a.jobs.GetJob(ctx, userID, request.JobPostingID)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to get job %v: %v", request.JobPostingID, err)
			return JobDetails{}, err
		}
		if job == nil {
			return JobDetails{}, ErrJobNotFound
		}
		return jobDetailsFromJob(job), nil
	}

	if request.JobDetails == nil || request.JobDetails.IsEmpty() {
		return JobDetails{}, ErrMissingJobDetails
	}
	if err := a.validator.Struct(request.JobDetails); err != nil {
		return JobDetails{}, errors.Wrap(ErrInvalidJobDetails, err.Error())
	}
	return *request.JobDetails, nil
}

func (a *AnalysisService) parseRecommendations(response string) (*Recommendations, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimSuffix(strings.TrimPrefix(response, "```"), "```")

	var recommendations Recommendations
	if err := json.Unmarshal([]byte(response), &recommendations); err != nil {
		return nil, errors.Wrap(ErrMalformedFeedback, err.Error())
	}
	if err := a.validator.Struct(recommendations); err != nil {
		return nil, errors.Wrap(ErrMalformedFeedback, err.Error())
	}

	sort.SliceStable(recommendations.PriorityModifications, func(i, j int) bool {
		return recommendations.PriorityModifications[i].Priority < recommendations.PriorityModifications[j].Priority
	})
	return &recommendations, nil
}

func (a *AnalysisService) save(ctx context.Context, userID string, feedback *Feedback) error {
	recommendations, err := json.Marshal(feedback.Recommendations)
	if err != nil {
		return err
	}

	return a.analyses.Add(ctx, &entities.Analysis{
		ID:           feedback.ID,
		UserID:       userID,
		JobPostingID: feedback.JobPostingID,
		JobTitle:     feedback.JobTitle,
		OverallScore: feedback.OverallScore.Score,
		ATSScore:     feedback.ATSCompatibility.Score,
		Summary:      feedback.ExecutiveSummary.FitPotential,
		Feedback:     string(recommendations),
		CreatedAt:    feedback.CreatedAt,
	})
}

func analysisPrompt(resumeText string, details JobDetails) string {
	var sb strings.Builder

	sb.WriteString("You are a senior executive recruiter with deep knowledge of applicant tracking systems. " +
		"Analyze the résumé against the job below and give specific, actionable recommendations " +
		"that raise its chances of passing ATS filters and catching a recruiter's attention.\n\n")

	sb.WriteString("Résumé:\n")
	sb.WriteString(truncateRunes(resumeText, maxResumeRunes))

	sb.WriteString("\n\nJob details:\n")
	writeJobField(&sb, "Title", details.Title)
	writeJobField(&sb, "Company", details.Company)
	writeJobField(&sb, "LinkedIn URL", details.LinkedInURL)
	writeJobField(&sb, "Required skills", details.RequiredSkills)
	writeJobField(&sb, "Experience level", details.ExperienceLevel)
	writeJobField(&sb, "Responsibilities", details.Responsibilities)
	writeJobField(&sb, "Industry", details.Industry)

	sb.WriteString("\nAnswer only with a JSON object of exactly this form:\n")
	sb.WriteString(recommendationsSchema)

	return sb.String()
}

func writeJobField(sb *strings.Builder, name string, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = "Not specified"
	}
	sb.WriteString(fmt.Sprintf("- %s: %s\n", name, value))
}

// truncateRunes cuts text to at most limit runes without splitting a multi-byte character.
func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}
