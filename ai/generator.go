package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"legalassist-backend/models"
)

// TaskType identifies which kind of narrative output is requested.
// Each task may be routed to a different model backend.
type TaskType string

const (
	TaskCaseAnalysis          TaskType = "case_analysis"
	TaskDefenseGeneration     TaskType = "defense_generation"
	TaskPrecedentAnalysis     TaskType = "precedent_analysis"
	TaskDocumentSummarization TaskType = "document_summarization"
)

var (
	ErrNoModelAvailable = errors.New("no narrative model available")
	ErrGenerationFailed = errors.New("narrative generation failed")
	ErrEmbeddingFailed  = errors.New("failed to generate embedding")
)

// Generator produces free-text analysis from a prompt pair
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// Embedder converts text into a fixed-length vector. The repository relies on
// the same Embedder being used at insert and query time; mixing embedding
// functions silently degrades ranking.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimensions() int
}

// Manager routes narrative tasks to registered model backends.
// Construction fails only implicitly: a Manager with no backends returns
// ErrNoModelAvailable from every task method.
type Manager struct {
	backends  map[string]Generator
	selection map[TaskType]string
}

// ManagerOption is a functional option for Manager
type ManagerOption func(*Manager)

// WithBackend registers a model backend under its model name
func WithBackend(gen Generator) ManagerOption {
	return func(m *Manager) {
		m.backends[gen.Name()] = gen
	}
}

// WithTaskModel pins a task type to a specific registered model
func WithTaskModel(task TaskType, modelName string) ManagerOption {
	return func(m *Manager) {
		m.selection[task] = modelName
	}
}

// NewManager creates a narrative model manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		backends:  make(map[string]Generator),
		selection: make(map[TaskType]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Available reports whether at least one backend is registered
func (m *Manager) Available() bool {
	return len(m.backends) > 0
}

// AvailableModels returns the names of registered backends
func (m *Manager) AvailableModels() []string {
	names := make([]string, 0, len(m.backends))
	for name := range m.backends {
		names = append(names, name)
	}
	return names
}

// generatorFor returns the preferred backend for a task, falling back to any
// registered backend when the preferred one is missing
func (m *Manager) generatorFor(task TaskType) (Generator, error) {
	if preferred, ok := m.selection[task]; ok {
		if gen, ok := m.backends[preferred]; ok {
			return gen, nil
		}
		log.Printf("Warning: preferred model %s for %s not available, falling back", preferred, task)
	}

	for _, gen := range m.backends {
		return gen, nil
	}

	return nil, ErrNoModelAvailable
}

// AnalyzeCase produces a narrative legal analysis of the given case facts
func (m *Manager) AnalyzeCase(ctx context.Context, caseFacts, jurisdiction, caseType string) (*models.CaseAnalysis, error) {
	gen, err := m.generatorFor(TaskCaseAnalysis)
	if err != nil {
		return nil, err
	}

	system, user := caseAnalysisPrompts(caseFacts, jurisdiction, caseType)
	analysis, err := gen.Generate(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("case analysis: %w", err)
	}

	return &models.CaseAnalysis{
		Analysis:   analysis,
		ModelUsed:  gen.Name(),
		Confidence: ExtractConfidence(analysis),
	}, nil
}

// AnalyzePrecedent produces a narrative analysis of a single precedent case
func (m *Manager) AnalyzePrecedent(ctx context.Context, caseName, caseText string) (*models.CaseAnalysis, error) {
	gen, err := m.generatorFor(TaskPrecedentAnalysis)
	if err != nil {
		return nil, err
	}

	system, user := precedentPrompts(caseName, caseText)
	analysis, err := gen.Generate(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("precedent analysis for %s: %w", caseName, err)
	}

	return &models.CaseAnalysis{
		Analysis:   analysis,
		ModelUsed:  gen.Name(),
		Confidence: ExtractConfidence(analysis),
	}, nil
}

// GenerateDefenseStrategy produces a defense strategy from case facts and
// up to five similar cases
func (m *Manager) GenerateDefenseStrategy(ctx context.Context, caseFacts string, similarCases []models.CaseRecord, jurisdiction string) (*models.DefenseStrategy, error) {
	gen, err := m.generatorFor(TaskDefenseGeneration)
	if err != nil {
		return nil, err
	}

	system, user := defensePrompts(caseFacts, formatSimilarCases(similarCases), jurisdiction)
	strategy, err := gen.Generate(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("defense generation: %w", err)
	}

	return &models.DefenseStrategy{
		Strategy:         strategy,
		ModelUsed:        gen.Name(),
		SimilarCasesUsed: len(similarCases),
		Confidence:       ExtractConfidence(strategy),
	}, nil
}

// SummarizeDocument produces a narrative summary of a legal document
func (m *Manager) SummarizeDocument(ctx context.Context, documentText string) (*models.DocumentSummary, error) {
	gen, err := m.generatorFor(TaskDocumentSummarization)
	if err != nil {
		return nil, err
	}

	system, user := summarizationPrompts(documentText)
	summary, err := gen.Generate(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("document summarization: %w", err)
	}

	return &models.DocumentSummary{
		Summary:   summary,
		ModelUsed: gen.Name(),
	}, nil
}

// formatSimilarCases renders the top cases as name/holding pairs for prompting
func formatSimilarCases(cases []models.CaseRecord) string {
	if len(cases) > 5 {
		cases = cases[:5]
	}

	var b strings.Builder
	for _, c := range cases {
		holding := c.Holding
		if holding == "" {
			holding = "N/A"
		}
		b.WriteString(fmt.Sprintf("Case: %s\nHolding: %s\n", c.CaseName, holding))
	}
	return b.String()
}
