package ai

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalassist-backend/models"
)

type stubGenerator struct {
	name   string
	output string
	err    error
	calls  int
}

func (s *stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func (s *stubGenerator) Name() string { return s.name }

func TestManagerNoBackends(t *testing.T) {
	m := NewManager()

	assert.False(t, m.Available())

	_, err := m.AnalyzeCase(context.Background(), "facts", "US", "criminal")
	assert.ErrorIs(t, err, ErrNoModelAvailable)

	_, err = m.GenerateDefenseStrategy(context.Background(), "facts", nil, "US")
	assert.ErrorIs(t, err, ErrNoModelAvailable)

	_, err = m.SummarizeDocument(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNoModelAvailable)
}

func TestManagerTaskRouting(t *testing.T) {
	fast := &stubGenerator{name: "fast-model", output: "fast analysis of the case"}
	deep := &stubGenerator{name: "deep-model", output: "deep analysis of the case"}

	m := NewManager(
		WithBackend(fast),
		WithBackend(deep),
		WithTaskModel(TaskCaseAnalysis, "deep-model"),
	)

	result, err := m.AnalyzeCase(context.Background(), "facts", "US", "criminal")
	require.NoError(t, err)
	assert.Equal(t, "deep-model", result.ModelUsed)
	assert.Equal(t, 1, deep.calls)
	assert.Equal(t, 0, fast.calls)
}

func TestManagerFallbackWhenPreferredMissing(t *testing.T) {
	only := &stubGenerator{name: "only-model", output: "analysis"}

	m := NewManager(
		WithBackend(only),
		WithTaskModel(TaskCaseAnalysis, "missing-model"),
	)

	result, err := m.AnalyzeCase(context.Background(), "facts", "US", "criminal")
	require.NoError(t, err)
	assert.Equal(t, "only-model", result.ModelUsed)
}

func TestManagerPropagatesGenerationError(t *testing.T) {
	boom := errors.New("upstream down")
	m := NewManager(WithBackend(&stubGenerator{name: "m1", err: boom}))

	_, err := m.AnalyzeCase(context.Background(), "facts", "US", "criminal")
	assert.ErrorIs(t, err, boom)
}

func TestGenerateDefenseStrategyCountsCases(t *testing.T) {
	m := NewManager(WithBackend(&stubGenerator{name: "m1", output: "strategy"}))

	cases := []models.CaseRecord{
		{CaseName: "A v. B", Holding: "Granted"},
		{CaseName: "C v. D"},
	}

	result, err := m.GenerateDefenseStrategy(context.Background(), "facts", cases, "US")
	require.NoError(t, err)
	assert.Equal(t, 2, result.SimilarCasesUsed)
}

func TestFormatSimilarCases(t *testing.T) {
	cases := []models.CaseRecord{
		{CaseName: "A v. B", Holding: "Motion granted"},
		{CaseName: "C v. D"},
	}

	text := formatSimilarCases(cases)
	assert.Contains(t, text, "Case: A v. B\nHolding: Motion granted\n")
	assert.Contains(t, text, "Case: C v. D\nHolding: N/A\n")
}

func TestFormatSimilarCasesCapsAtFive(t *testing.T) {
	cases := make([]models.CaseRecord, 8)
	for i := range cases {
		cases[i] = models.CaseRecord{CaseName: "Case", Holding: "H"}
	}

	text := formatSimilarCases(cases)
	assert.Equal(t, 5, strings.Count(text, "Case: "))
}

func TestExtractConfidence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"highly confident", "I am highly confident in this outcome.", 0.9},
		{"very confident", "The court was very confident here.", 0.85},
		{"somewhat confident", "We are somewhat confident.", 0.7},
		{"moderately confident", "I am moderately confident.", 0.6},
		{"not confident", "I am not confident in this.", 0.2},
		{"bare confident", "I am confident in this analysis.", 0.8},
		{"uncertain", "The outcome is uncertain.", 0.4},
		{"short fallback", "Brief note.", 0.4},
		{"medium fallback", strings.Repeat("a", 250), 0.6},
		{"long structured fallback", strings.Repeat("x", 490) + " therefore the claim fails", 0.75},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ExtractConfidence(tc.text), 1e-9)
		})
	}
}

func TestLocalEmbedderDeterministic(t *testing.T) {
	e := NewLocalEmbedder(768)

	a, err := e.Embed(context.Background(), "breach of contract dispute")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "breach of contract dispute")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 768)
}

func TestLocalEmbedderNormalized(t *testing.T) {
	e := NewLocalEmbedder(768)

	v, err := e.Embed(context.Background(), "the defendant was found guilty of fraud")
	require.NoError(t, err)

	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-9)
}

func TestLocalEmbedderSimilarTextCloser(t *testing.T) {
	e := NewLocalEmbedder(768)

	base, _ := e.Embed(context.Background(), "defendant charged with burglary and theft")
	near, _ := e.Embed(context.Background(), "defendant charged with burglary")
	far, _ := e.Embed(context.Background(), "patent licensing royalty agreement")

	assert.Greater(t, dot(base, near), dot(base, far))
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
