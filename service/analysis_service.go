package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"legalassist-backend/ai"
	"legalassist-backend/models"
	"legalassist-backend/repository"
)

var (
	ErrCaseFactsRequired = errors.New("case facts are required")
	ErrAnalysisFailed    = errors.New("case analysis failed")
)

const (
	similarCaseLimit = 5
	precedentLimit   = 3
)

// AnalysisService orchestrates case analysis: precedent retrieval, narrative
// analysis, risk scoring, and recommendations
type AnalysisService struct {
	caseRepo repository.CaseRepository
	aiMgr    *ai.Manager
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// AnalysisWithCaseRepository sets the case repository
func AnalysisWithCaseRepository(repo repository.CaseRepository) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.caseRepo = repo
	}
}

// AnalysisWithAIManager sets the narrative model manager
func AnalysisWithAIManager(mgr *ai.Manager) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.aiMgr = mgr
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeCase runs the full analysis pipeline for the given case facts.
// Retrieval pulls up to five similar cases; the top three get an individual
// precedent analysis.
func (s *AnalysisService) AnalyzeCase(ctx context.Context, caseFacts, jurisdiction, caseType string) (*models.AnalysisResult, error) {
	if caseFacts == "" {
		return nil, ErrCaseFactsRequired
	}

	filters := repository.CaseFilters{
		Jurisdiction: jurisdiction,
		CaseType:     caseType,
	}
	similarCases, err := s.caseRepo.FindSimilar(ctx, caseFacts, filters, similarCaseLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	caseAnalysis, err := s.aiMgr.AnalyzeCase(ctx, caseFacts, jurisdiction, caseType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	precedents := make([]models.Precedent, 0, precedentLimit)
	for _, c := range similarCases {
		if len(precedents) == precedentLimit {
			break
		}
		analysis, err := s.aiMgr.AnalyzePrecedent(ctx, c.CaseName, repository.CanonicalCaseText(&c))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
		}
		precedents = append(precedents, models.Precedent{
			Case:     c,
			Analysis: *analysis,
		})
	}

	riskAssessment := assessRisk(similarCases)
	recommendations := generateRecommendations(riskAssessment, len(similarCases))
	confidence := calculateConfidence(caseAnalysis.Confidence, precedents, len(similarCases))

	log.Printf("Analyzed case: %d similar cases, risk %s, confidence %.2f",
		len(similarCases), riskAssessment.RiskLevel, confidence)

	return &models.AnalysisResult{
		CaseAnalysis:    *caseAnalysis,
		SimilarCases:    similarCases,
		Precedents:      precedents,
		RiskAssessment:  riskAssessment,
		Recommendations: recommendations,
		ConfidenceScore: confidence,
	}, nil
}

// AddCase stores a precedent case in the repository
func (s *AnalysisService) AddCase(ctx context.Context, c *models.CaseRecord) (int64, error) {
	return s.caseRepo.AddCase(ctx, c)
}

// FindSimilarCases retrieves precedents matching the given facts
func (s *AnalysisService) FindSimilarCases(ctx context.Context, caseFacts, jurisdiction, caseType string, limit int) ([]models.CaseRecord, error) {
	if limit <= 0 {
		limit = similarCaseLimit
	}
	return s.caseRepo.FindSimilar(ctx, caseFacts, repository.CaseFilters{
		Jurisdiction: jurisdiction,
		CaseType:     caseType,
	}, limit)
}

// Stats reports repository totals
func (s *AnalysisService) Stats(ctx context.Context) (*models.RepositoryStats, error) {
	return s.caseRepo.Stats(ctx)
}

var (
	favorableWords   = []string{"grant", "favor", "win", "success"}
	unfavorableWords = []string{"deny", "dismiss", "lose", "fail"}
)

// assessRisk buckets each similar case by its holding and maps the favorable
// ratio onto a risk level. A holding matching both word sets counts as
// favorable; a holding matching neither counts toward the total only.
func assessRisk(similarCases []models.CaseRecord) models.RiskAssessment {
	var favorable, unfavorable int
	for _, c := range similarCases {
		holding := strings.ToLower(c.Holding)
		switch {
		case containsAnyWord(holding, favorableWords):
			favorable++
		case containsAnyWord(holding, unfavorableWords):
			unfavorable++
		}
	}

	total := len(similarCases)
	if total == 0 {
		return models.RiskAssessment{
			RiskLevel:         models.RiskUnknown,
			RiskScore:         0.5,
			TotalSimilarCases: 0,
		}
	}

	ratio := float64(favorable) / float64(total)

	var level models.RiskLevel
	var score float64
	switch {
	case ratio >= 0.7:
		level = models.RiskLow
		score = 0.2
	case ratio >= 0.4:
		level = models.RiskMedium
		score = 0.5
	default:
		level = models.RiskHigh
		score = 0.8
	}

	return models.RiskAssessment{
		RiskLevel:         level,
		RiskScore:         score,
		FavorableCases:    favorable,
		UnfavorableCases:  unfavorable,
		TotalSimilarCases: total,
		FavorableRatio:    ratio,
	}
}

// generateRecommendations builds the recommendation list from the risk level
// and retrieval count
func generateRecommendations(risk models.RiskAssessment, similarCount int) []string {
	var recommendations []string

	switch risk.RiskLevel {
	case models.RiskHigh:
		recommendations = append(recommendations,
			"Consider settlement negotiations early in the process",
			"Focus on strong evidence collection and witness preparation")
	case models.RiskMedium:
		recommendations = append(recommendations,
			"Prepare comprehensive defense strategy",
			"Consider expert witness testimony")
	default:
		recommendations = append(recommendations,
			"Proceed with confidence but maintain thorough preparation")
	}

	if similarCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Study %d similar cases for precedent", similarCount))
	}

	recommendations = append(recommendations,
		"Ensure all evidence is properly documented and preserved",
		"Prepare witnesses thoroughly for testimony",
		"Consider alternative dispute resolution if appropriate")

	return recommendations
}

// calculateConfidence blends the primary analysis confidence, the retrieval
// count, and the mean precedent confidence into one score capped at 1.0
func calculateConfidence(baseConfidence float64, precedents []models.Precedent, similarCount int) float64 {
	caseFactor := float64(similarCount) / 5.0
	if caseFactor > 1.0 {
		caseFactor = 1.0
	}

	precedentConfidence := 0.5
	if len(precedents) > 0 {
		var sum float64
		for _, p := range precedents {
			sum += p.Analysis.Confidence
		}
		precedentConfidence = sum / float64(len(precedents))
	}

	confidence := baseConfidence*0.4 + caseFactor*0.3 + precedentConfidence*0.3
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func containsAnyWord(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
