package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/cv-matcher/internal/entities"
	"github.com/maxaizer/cv-matcher/internal/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

const validFeedback = `{
	"overall_score": {"score": 72, "explanation": "Solid backend profile"},
	"ats_compatibility": {"score": 64, "explanation": "Two-column layout"},
	"technical_skills": [
		{"kind": "match", "content": "Go"},
		{"kind": "missing", "content": "Kubernetes"}
	],
	"soft_skills": [{"kind": "improve", "content": "Show mentoring"}],
	"professional_experience": [{"kind": "quantify", "content": "Add latency numbers"}],
	"structure_and_formatting": [{"kind": "weakness", "content": "Too long"}],
	"keyword_optimization": [{"kind": "missing", "keywords": ["gRPC", "Kafka"], "content": "Add them to skills"}],
	"recommended_sections": [{"kind": "add", "section": "Projects", "content": "Open source work"}],
	"priority_modifications": [
		{"priority": 2, "category": "Formatting", "action": "Use one column"},
		{"priority": 1, "category": "Skills", "action": "Mention Kubernetes"}
	],
	"executive_summary": {"key_strengths": ["Go"], "critical_gaps": ["Kubernetes"], "fit_potential": "Medium"}
}`

type mockAiClient struct {
	mock.Mock
}

func (m *mockAiClient) GenerateResponse(ctx context.Context, request string) (string, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Error(1)
}

type mockJobReader struct {
	mock.Mock
}

func (m *mockJobReader) Get(ctx context.Context, userID string, postingID string) (*entities.Job, error) {
	args := m.Called(ctx, userID, postingID)
	job, _ := args.Get(0).(*entities.Job)
	return job, args.Error(1)
}

type mockAnalyses struct {
	mock.Mock
}

func (m *mockAnalyses) Add(ctx context.Context, analysis *entities.Analysis) error {
	return m.Called(ctx, analysis).Error(0)
}

func (m *mockAnalyses) GetByUser(ctx context.Context, userID string, limit int) ([]entities.Analysis, error) {
	args := m.Called(ctx, userID, limit)
	analyses, _ := args.Get(0).([]entities.Analysis)
	return analyses, args.Error(1)
}

func (m *mockAnalyses) RemoveOlderThan(ctx context.Context, expirationTime time.Time) (int64, error) {
	args := m.Called(ctx, expirationTime)
	return args.Get(0).(int64), args.Error(1)
}

func newTestCachedJobs(t *testing.T, jobs *mockJobReader) (*CachedJobs, EventBus.Bus) {
	bus := EventBus.New()
	cached, err := NewCachedJobs(bus, jobs)
	require.NoError(t, err)
	return cached, bus
}

func Test_Analyze_WithStoredJob_ShouldIncludeJobInPromptAndSave(t *testing.T) {
	jobs := &mockJobReader{}
	jobs.On("Get", mock.Anything, "alice", "42").Return(&entities.Job{
		JobPostingID:      "42",
		JobTitle:          "Go Developer",
		CompanyName:       "Acme",
		JobSeniorityLevel: "Senior",
		CompanyIndustry:   "Tech, Finance",
	}, nil).Once()
	cached, _ := newTestCachedJobs(t, jobs)

	ai := &mockAiClient{}
	ai.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(request string) bool {
		return strings.Contains(request, "- Title: Go Developer") &&
			strings.Contains(request, "- Experience level: Senior") &&
			strings.Contains(request, "- Responsibilities: Not specified") &&
			strings.Contains(request, "Ten years of Go")
	})).Return("```json\n"+validFeedback+"\n```", nil).Once()

	analyses := &mockAnalyses{}
	analyses.On("Add", mock.Anything, mock.MatchedBy(func(a *entities.Analysis) bool {
		return a.UserID == "alice" && a.JobPostingID == "42" && a.JobTitle == "Go Developer" &&
			a.OverallScore == 72 && a.ATSScore == 64 && a.Summary == "Medium" &&
			strings.Contains(a.Feedback, "Mention Kubernetes")
	})).Return(nil).Once()

	service := NewAnalysisService(ai, cached, analyses)
	feedback, err := service.Analyze(context.Background(), "alice", AnalysisRequest{
		ResumeText:   "  Ten years of Go  ",
		JobPostingID: "42",
		JobDetails:   &JobDetails{Title: "ignored"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, feedback.ID)
	assert.Equal(t, 72, feedback.OverallScore.Score)
	assert.Equal(t, 64, feedback.ATSCompatibility.Score)
	assert.Equal(t, []string{"gRPC", "Kafka"}, feedback.KeywordOptimization[0].Keywords)
	require.Len(t, feedback.PriorityModifications, 2)
	assert.Equal(t, 1, feedback.PriorityModifications[0].Priority)
	assert.Equal(t, "Mention Kubernetes", feedback.PriorityModifications[0].Action)
	ai.AssertExpectations(t)
	analyses.AssertExpectations(t)
}

func Test_Analyze_WithManualJobDetails_ShouldUseThemInPrompt(t *testing.T) {
	ai := &mockAiClient{}
	ai.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(request string) bool {
		return strings.Contains(request, "- Title: Data Engineer") &&
			strings.Contains(request, "- Company: Globex") &&
			strings.Contains(request, "- Required skills: Spark, SQL") &&
			strings.Contains(request, "- Industry: Not specified")
	})).Return(validFeedback, nil).Once()

	analyses := &mockAnalyses{}
	analyses.On("Add", mock.Anything, mock.MatchedBy(func(a *entities.Analysis) bool {
		return a.JobPostingID == "" && a.JobTitle == "Data Engineer"
	})).Return(nil).Once()

	service := NewAnalysisService(ai, nil, analyses)
	feedback, err := service.Analyze(context.Background(), "alice", AnalysisRequest{
		ResumeText: "resume",
		JobDetails: &JobDetails{
			Title:          "Data Engineer",
			Company:        "Globex",
			LinkedInURL:    "https://www.linkedin.com/jobs/view/1/",
			RequiredSkills: "Spark, SQL",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", feedback.JobTitle)
	ai.AssertExpectations(t)
	analyses.AssertExpectations(t)
}

func Test_Analyze_WithoutJob_ShouldFailWithoutCallingAi(t *testing.T) {
	ai := &mockAiClient{}
	service := NewAnalysisService(ai, nil, &mockAnalyses{})

	_, err := service.Analyze(context.Background(), "alice", AnalysisRequest{ResumeText: "resume"})
	assert.ErrorIs(t, err, ErrMissingJobDetails)

	_, err = service.Analyze(context.Background(), "alice", AnalysisRequest{ResumeText: "resume", JobDetails: &JobDetails{Title: "  "}})
	assert.ErrorIs(t, err, ErrMissingJobDetails)

	_, err = service.Analyze(context.Background(), "alice", AnalysisRequest{
		ResumeText: "resume",
		JobDetails: &JobDetails{Title: "Dev", LinkedInURL: "not a url"},
	})
	assert.ErrorIs(t, err, ErrInvalidJobDetails)

	ai.AssertNotCalled(t, "GenerateResponse", mock.Anything, mock.Anything)
}

func Test_Analyze_EmptyResume_ShouldFailWithoutCallingAi(t *testing.T) {
	ai := &mockAiClient{}
	service := NewAnalysisService(ai, nil, &mockAnalyses{})

	_, err := service.Analyze(context.Background(), "alice", AnalysisRequest{ResumeText: " \n ", JobDetails: &JobDetails{Title: "Dev"}})

	assert.ErrorIs(t, err, ErrEmptyResume)
	ai.AssertNotCalled(t, "GenerateResponse", mock.Anything, mock.Anything)
}

func Test_Analyze_UnknownJob_ShouldReturnNotFound(t *testing.T) {
	jobs := &mockJobReader{}
	jobs.On("Get", mock.Anything, "alice", "missing").Return(nil, nil).Once()
	cached, _ := newTestCachedJobs(t, jobs)

	service := NewAnalysisService(&mockAiClient{}, cached, &mockAnalyses{})
	_, err := service.Analyze(context.Background(), "alice", AnalysisRequest{ResumeText: "resume", JobPostingID: "missing"})

	assert.ErrorIs(t, err, ErrJobNotFound)
}

func Test_Analyze_MalformedResponse_ShouldNotSave(t *testing.T) {
	responses := []string{
		"I think the résumé is fine",
		strings.Replace(validFeedback, `"score": 72`, `"score": 150`, 1),
		strings.Replace(validFeedback, `"kind": "match"`, `"kind": "great"`, 1),
		strings.Replace(validFeedback, `"fit_potential": "Medium"`, `"fit_potential": ""`, 1),
		`{"overall_score": {"score": 50, "explanation": "x"}, "ats_compatibility": {"score": 50, "explanation": "x"},
			"priority_modifications": [], "executive_summary": {"fit_potential": "Low"}}`,
	}

	for _, response := range responses {
		ai := &mockAiClient{}
		ai.On("GenerateResponse", mock.Anything, mock.Anything).Return(response, nil).Once()
		analyses := &mockAnalyses{}

		service := NewAnalysisService(ai, nil, analyses)
		_, err := service.Analyze(context.Background(), "alice", AnalysisRequest{ResumeText: "resume", JobDetails: &JobDetails{Title: "Dev"}})

		assert.ErrorIs(t, err, ErrMalformedFeedback, response)
		analyses.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	}
}

func Test_Analyze_AiError_ShouldBeReturned(t *testing.T) {
	ai := &mockAiClient{}
	ai.On("GenerateResponse", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()

	service := NewAnalysisService(ai, nil, &mockAnalyses{})
	_, err := service.Analyze(context.Background(), "alice", AnalysisRequest{ResumeText: "resume", JobDetails: &JobDetails{Title: "Dev"}})

	assert.EqualError(t, err, "quota exceeded")
}

func Test_AnalysisPrompt_LongResume_ShouldBeCutOnRuneBoundary(t *testing.T) {
	resume := strings.Repeat("é", maxResumeRunes+10)

	prompt := analysisPrompt(resume, JobDetails{Title: "Dev"})

	assert.True(t, utf8.ValidString(prompt))
	assert.Contains(t, prompt, strings.Repeat("é", maxResumeRunes)+"\n")
	assert.NotContains(t, prompt, strings.Repeat("é", maxResumeRunes+1))
}

func Test_GetAnalyses_ShouldDecodeStoredRecommendations(t *testing.T) {
	analyses := &mockAnalyses{}
	analyses.On("GetByUser", mock.Anything, "alice", 10).Return([]entities.Analysis{
		{ID: "a1", JobTitle: "Dev", OverallScore: 72, Feedback: validFeedback},
		{ID: "a2", OverallScore: 40, ATSScore: 30, Summary: "old", Feedback: "not json"},
	}, nil).Once()

	service := NewAnalysisService(&mockAiClient{}, nil, analyses)
	result, err := service.GetAnalyses(context.Background(), "alice", 10)

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Dev", result[0].JobTitle)
	assert.Equal(t, "Medium", result[0].ExecutiveSummary.FitPotential)
	require.Len(t, result[0].TechnicalSkills, 2)
	assert.Equal(t, 40, result[1].OverallScore.Score)
	assert.Equal(t, 30, result[1].ATSCompatibility.Score)
}

func Test_CachedJobs_ShouldReadOnceUntilJobSaved(t *testing.T) {
	jobs := &mockJobReader{}
	jobs.On("Get", mock.Anything, "alice", "1").Return(&entities.Job{JobPostingID: "1"}, nil).Twice()
	cached, bus := newTestCachedJobs(t, jobs)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cached.GetJob(ctx, "alice", "1")
		require.NoError(t, err)
	}
	jobs.AssertNumberOfCalls(t, "Get", 1)

	bus.Publish(events.JobSavedTopic, events.JobSaved{UserID: "alice", JobPostingID: "1"})

	_, err := cached.GetJob(ctx, "alice", "1")
	require.NoError(t, err)
	jobs.AssertNumberOfCalls(t, "Get", 2)
}

func Test_AnalysesCleaner_ShouldRemoveOlderThanRetention(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	analyses := &mockAnalyses{}
	analyses.On("RemoveOlderThan", mock.Anything, now.AddDate(0, 0, -30)).Return(int64(3), nil).Once()

	cleaner, err := NewAnalysesCleaner(analyses, 30)
	require.NoError(t, err)
	cleaner.now = func() time.Time { return now }

	cleaner.cleanOldAnalyses()

	analyses.AssertExpectations(t)
}

func Test_NewAnalysesCleaner_InvalidRetention_ShouldFail(t *testing.T) {
	_, err := NewAnalysesCleaner(&mockAnalyses{}, 0)
	assert.Error(t, err)
}
