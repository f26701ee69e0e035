package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"legalassist-backend/ai"
	"legalassist-backend/models"
	"legalassist-backend/repository"
)

var ErrDefenseGenerationFailed = errors.New("defense strategy generation failed")

// DefenseService builds defense strategies grounded on retrieved precedents
type DefenseService struct {
	caseRepo repository.CaseRepository
	aiMgr    *ai.Manager
}

// DefenseServiceOption is a functional option for DefenseService
type DefenseServiceOption func(*DefenseService)

// DefenseWithCaseRepository sets the case repository
func DefenseWithCaseRepository(repo repository.CaseRepository) DefenseServiceOption {
	return func(s *DefenseService) {
		s.caseRepo = repo
	}
}

// DefenseWithAIManager sets the narrative model manager
func DefenseWithAIManager(mgr *ai.Manager) DefenseServiceOption {
	return func(s *DefenseService) {
		s.aiMgr = mgr
	}
}

// NewDefenseService creates a new defense service
func NewDefenseService(opts ...DefenseServiceOption) *DefenseService {
	s := &DefenseService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateDefense retrieves precedents for the case facts and generates a
// defense strategy from them. Retrieval failure degrades to a strategy
// without precedent grounding rather than failing the request.
func (s *DefenseService) GenerateDefense(ctx context.Context, caseFacts, jurisdiction string) (*models.DefenseStrategy, error) {
	if caseFacts == "" {
		return nil, ErrCaseFactsRequired
	}

	filters := repository.CaseFilters{Jurisdiction: jurisdiction}
	similarCases, err := s.caseRepo.FindSimilar(ctx, caseFacts, filters, similarCaseLimit)
	if err != nil {
		log.Printf("Warning: precedent retrieval failed, generating without precedents: %v", err)
		similarCases = nil
	}

	strategy, err := s.aiMgr.GenerateDefenseStrategy(ctx, caseFacts, similarCases, jurisdiction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDefenseGenerationFailed, err)
	}

	return strategy, nil
}
