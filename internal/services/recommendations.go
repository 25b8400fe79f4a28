package services

import (
	"github.com/maxaizer/cv-matcher/internal/entities"
	"github.com/samber/lo"
	"strings"
)

// JobDetails describes the target position when it is entered by hand instead of scraped.
type JobDetails struct {
	Title            string `json:"title"`
	Company          string `json:"company"`
	LinkedInURL      string `json:"linkedin_url" validate:"omitempty,url"`
	RequiredSkills   string `json:"required_skills"`
	ExperienceLevel  string `json:"experience_level"`
	Responsibilities string `json:"responsibilities"`
	Industry         string `json:"industry"`
}

func (d JobDetails) IsEmpty() bool {
	return lo.EveryBy([]string{d.Title, d.Company, d.LinkedInURL, d.RequiredSkills,
		d.ExperienceLevel, d.Responsibilities, d.Industry}, func(value string) bool {
		return strings.TrimSpace(value) == ""
	})
}

func jobDetailsFromJob(job *entities.Job) JobDetails {
	skills := lo.Compact([]string{job.Requirements, job.Qualifications})
	industry := job.CompanyIndustry
	if industry == "" {
		industry = strings.Join(job.JobIndustries, ", ")
	}

	return JobDetails{
		Title:            job.JobTitle,
		Company:          job.CompanyName,
		LinkedInURL:      job.URL,
		RequiredSkills:   strings.Join(skills, "\n"),
		ExperienceLevel:  job.JobSeniorityLevel,
		Responsibilities: lo.CoalesceOrEmpty(job.JobSummary, job.JobDescriptionFormatted),
		Industry:         industry,
	}
}

type ScoredVerdict struct {
	Score       int    `json:"score" validate:"gte=0,lte=100"`
	Explanation string `json:"explanation" validate:"required"`
}

// Finding kinds: match, partial, missing, improve and additional for skills;
// strength, weakness, improve and quantify for experience and structure.
type Finding struct {
	Kind    string `json:"kind" validate:"required,oneof=match partial missing improve additional strength weakness quantify"`
	Content string `json:"content" validate:"required"`
}

type KeywordFinding struct {
	Kind     string   `json:"kind" validate:"required,oneof=present missing improve"`
	Keywords []string `json:"keywords"`
	Content  string   `json:"content"`
}

type SectionRecommendation struct {
	Kind    string `json:"kind" validate:"required,oneof=add improve"`
	Section string `json:"section" validate:"required"`
	Content string `json:"content"`
}

type Modification struct {
	Priority int    `json:"priority" validate:"gte=1"`
	Category string `json:"category" validate:"required"`
	Action   string `json:"action" validate:"required"`
}

type ExecutiveSummary struct {
	KeyStrengths []string `json:"key_strengths"`
	CriticalGaps []string `json:"critical_gaps"`
	FitPotential string   `json:"fit_potential" validate:"required"`
}

// Recommendations is the fixed schema the model must answer with.
type Recommendations struct {
	OverallScore           ScoredVerdict           `json:"overall_score"`
	ATSCompatibility       ScoredVerdict           `json:"ats_compatibility"`
	TechnicalSkills        []Finding               `json:"technical_skills" validate:"dive"`
	SoftSkills             []Finding               `json:"soft_skills" validate:"dive"`
	ProfessionalExperience []Finding               `json:"professional_experience" validate:"dive"`
	StructureAndFormatting []Finding               `json:"structure_and_formatting" validate:"dive"`
	KeywordOptimization    []KeywordFinding        `json:"keyword_optimization" validate:"dive"`
	RecommendedSections    []SectionRecommendation `json:"recommended_sections" validate:"dive"`
	PriorityModifications  []Modification          `json:"priority_modifications" validate:"required,min=1,dive"`
	ExecutiveSummary       ExecutiveSummary        `json:"executive_summary"`
}

const recommendationsSchema = `{
  "overall_score": {"score": 0-100, "explanation": "why the résumé fits the position or not"},
  "ats_compatibility": {"score": 0-100, "explanation": "why an ATS would pass or filter the résumé"},
  "technical_skills": [{"kind": "match|partial|missing|improve|additional", "content": "..."}],
  "soft_skills": [{"kind": "match|missing|improve", "content": "..."}],
  "professional_experience": [{"kind": "strength|weakness|improve|quantify", "content": "..."}],
  "structure_and_formatting": [{"kind": "strength|weakness|improve", "content": "..."}],
  "keyword_optimization": [{"kind": "present|missing|improve", "keywords": ["..."], "content": "..."}],
  "recommended_sections": [{"kind": "add|improve", "section": "section name", "content": "..."}],
  "priority_modifications": [{"priority": 1, "category": "affected area", "action": "specific action"}],
  "executive_summary": {"key_strengths": ["..."], "critical_gaps": ["..."], "fit_potential": "High/Medium/Low with a short reason"}
}`
