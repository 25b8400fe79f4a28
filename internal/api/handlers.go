package api

import (
	"context"
	"github.com/gin-gonic/gin"
	"github.com/maxaizer/cv-matcher/internal/auth"
	"github.com/maxaizer/cv-matcher/internal/clients/brightdata"
	"github.com/maxaizer/cv-matcher/internal/entities"
	"github.com/maxaizer/cv-matcher/internal/services"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"io"
	"net/http"
	"strconv"
)

const (
	maxResumeSize = 10 << 20
	defaultLimit  = 20
	maxLimit      = 100
)

type jobDataRequester interface {
	RequestJobData(ctx context.Context, jobURL string, userID string) (services.AggregateResult, error)
}

type jobLister interface {
	GetByUser(ctx context.Context, userID string, limit int) ([]entities.Job, error)
}

type resumeExtractor interface {
	ExtractText(content []byte) (string, error)
}

type resumeAnalyzer interface {
	Analyze(ctx context.Context, userID string, request services.AnalysisRequest) (*services.Feedback, error)
	GetAnalyses(ctx context.Context, userID string, limit int) ([]services.Feedback, error)
}

type extractJobRequest struct {
	URL string `json:"url" binding:"required"`
}

type analysisRequest struct {
	ResumeText   string               `json:"resume_text" binding:"required"`
	JobPostingID string               `json:"job_posting_id"`
	JobDetails   *services.JobDetails `json:"job_details"`
}

type Handlers struct {
	jobData  jobDataRequester
	jobs     jobLister
	resumes  resumeExtractor
	analyzer resumeAnalyzer
}

func NewHandlers(jobData jobDataRequester, jobs jobLister, resumes resumeExtractor, analyzer resumeAnalyzer) *Handlers {
	return &Handlers{jobData: jobData, jobs: jobs, resumes: resumes, analyzer: analyzer}
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ExtractJob answers 200 for every structurally valid url, degraded results carry fallback data.
func (h *Handlers) ExtractJob(c *gin.Context) {
	var req extractJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "url is required")
		return
	}

	result, err := h.jobData.RequestJobData(c.Request.Context(), req.URL, auth.OwnerID(c))
	if err != nil {
		if errors.Is(err, brightdata.ErrInvalidURL) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Errorf("job data request for %v failed: %v", req.URL, err)
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	body := gin.H{
		"success":  true,
		"data":     result.Data,
		"results":  result.Results,
		"fallback": result.Fallback,
	}
	if result.Error != "" {
		body["error"] = result.Error
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handlers) ListJobs(c *gin.Context) {
	jobs, err := h.jobs.GetByUser(c.Request.Context(), auth.OwnerID(c), limitParam(c))
	if err != nil {
		log.Errorf("failed to list jobs: %v", err)
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": jobs})
}

func (h *Handlers) UploadResume(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxResumeSize {
		respondError(c, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "file cannot be read")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxResumeSize))
	if err != nil {
		respondError(c, http.StatusBadRequest, "file cannot be read")
		return
	}

	text, err := h.resumes.ExtractText(content)
	if err != nil {
		if errors.Is(err, services.ErrNotPDF) || errors.Is(err, services.ErrNoResumeText) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to read pdf")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"file_name": fileHeader.Filename, "text": text}})
}

func (h *Handlers) CreateAnalysis(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "resume_text is required")
		return
	}

	feedback, err := h.analyzer.Analyze(c.Request.Context(), auth.OwnerID(c), services.AnalysisRequest{
		ResumeText:   req.ResumeText,
		JobPostingID: req.JobPostingID,
		JobDetails:   req.JobDetails,
	})
	switch {
	case errors.Is(err, services.ErrEmptyResume),
		errors.Is(err, services.ErrMissingJobDetails),
		errors.Is(err, services.ErrInvalidJobDetails):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrJobNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrMalformedFeedback):
		respondError(c, http.StatusBadGateway, "analysis failed, try again")
	case err != nil:
		respondError(c, http.StatusInternalServerError, "internal error")
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "data": feedback})
	}
}

func (h *Handlers) ListAnalyses(c *gin.Context) {
	analyses, err := h.analyzer.GetAnalyses(c.Request.Context(), auth.OwnerID(c), limitParam(c))
	if err != nil {
		log.Errorf("failed to list analyses: %v", err)
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": analyses})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}
