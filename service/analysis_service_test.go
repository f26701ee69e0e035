package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalassist-backend/ai"
	"legalassist-backend/models"
	"legalassist-backend/repository"
)

type fixedGenerator struct {
	name   string
	output string
}

func (g *fixedGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return g.output, nil
}

func (g *fixedGenerator) Name() string { return g.name }

func newTestManager(output string) *ai.Manager {
	return ai.NewManager(ai.WithBackend(&fixedGenerator{name: "test-model", output: output}))
}

func casesWithHoldings(holdings ...string) []models.CaseRecord {
	cases := make([]models.CaseRecord, len(holdings))
	for i, h := range holdings {
		cases[i] = models.CaseRecord{
			CaseName: fmt.Sprintf("Case %d", i+1),
			Holding:  h,
		}
	}
	return cases
}

func TestAssessRiskLow(t *testing.T) {
	// 7 of 10 favorable
	holdings := []string{
		"Motion granted", "Judgment in favor of plaintiff", "Appeal successful",
		"Petition granted", "Plaintiff wins", "Granted in part", "Ruled in favor",
		"Petition dismissed", "Case dismissed", "Claim failed",
	}

	risk := assessRisk(casesWithHoldings(holdings...))
	assert.Equal(t, models.RiskLow, risk.RiskLevel)
	assert.Equal(t, 0.2, risk.RiskScore)
	assert.Equal(t, 7, risk.FavorableCases)
	assert.Equal(t, 3, risk.UnfavorableCases)
	assert.Equal(t, 10, risk.TotalSimilarCases)
	assert.InDelta(t, 0.7, risk.FavorableRatio, 1e-9)
}

func TestAssessRiskMedium(t *testing.T) {
	holdings := []string{"Motion granted", "Motion granted", "Motion denied", "Case dismissed", "Claim failed"}

	risk := assessRisk(casesWithHoldings(holdings...))
	assert.Equal(t, models.RiskMedium, risk.RiskLevel)
	assert.Equal(t, 0.5, risk.RiskScore)
}

func TestAssessRiskHigh(t *testing.T) {
	holdings := []string{"Motion denied", "Case dismissed", "Motion granted"}

	risk := assessRisk(casesWithHoldings(holdings...))
	assert.Equal(t, models.RiskHigh, risk.RiskLevel)
	assert.Equal(t, 0.8, risk.RiskScore)
}

func TestAssessRiskEmpty(t *testing.T) {
	risk := assessRisk(nil)
	assert.Equal(t, models.RiskUnknown, risk.RiskLevel)
	assert.Equal(t, 0.5, risk.RiskScore)
	assert.Equal(t, 0, risk.TotalSimilarCases)
	assert.Equal(t, 0.0, risk.FavorableRatio)
}

func TestAssessRiskFavorableWinsOnAmbiguousHolding(t *testing.T) {
	// Holding matches both word sets; the favorable bucket is checked first
	risk := assessRisk(casesWithHoldings("Motion granted in part, denied in part"))
	assert.Equal(t, 1, risk.FavorableCases)
	assert.Equal(t, 0, risk.UnfavorableCases)
}

func TestAssessRiskNeutralHoldingCountsTowardTotalOnly(t *testing.T) {
	risk := assessRisk(casesWithHoldings("Remanded for further proceedings"))
	assert.Equal(t, 0, risk.FavorableCases)
	assert.Equal(t, 0, risk.UnfavorableCases)
	assert.Equal(t, 1, risk.TotalSimilarCases)
	assert.Equal(t, models.RiskHigh, risk.RiskLevel)
}

func TestGenerateRecommendationsByRiskLevel(t *testing.T) {
	high := generateRecommendations(models.RiskAssessment{RiskLevel: models.RiskHigh}, 4)
	assert.Contains(t, high, "Consider settlement negotiations early in the process")
	assert.Contains(t, high, "Study 4 similar cases for precedent")
	assert.Contains(t, high, "Ensure all evidence is properly documented and preserved")

	medium := generateRecommendations(models.RiskAssessment{RiskLevel: models.RiskMedium}, 0)
	assert.Contains(t, medium, "Prepare comprehensive defense strategy")
	assert.NotContains(t, medium, "Study 0 similar cases for precedent")

	low := generateRecommendations(models.RiskAssessment{RiskLevel: models.RiskLow}, 1)
	assert.Contains(t, low, "Proceed with confidence but maintain thorough preparation")
}

func TestCalculateConfidence(t *testing.T) {
	precedents := []models.Precedent{
		{Analysis: models.CaseAnalysis{Confidence: 0.6}},
		{Analysis: models.CaseAnalysis{Confidence: 0.7}},
	}

	// 0.8*0.4 + (2/5)*0.3 + 0.65*0.3 = 0.32 + 0.12 + 0.195
	got := calculateConfidence(0.8, precedents, 2)
	assert.InDelta(t, 0.635, got, 1e-9)
}

func TestCalculateConfidenceNoPrecedents(t *testing.T) {
	// Missing precedents contribute the neutral 0.5
	got := calculateConfidence(0.6, nil, 0)
	assert.InDelta(t, 0.6*0.4+0.5*0.3, got, 1e-9)
}

func TestCalculateConfidenceCapped(t *testing.T) {
	precedents := []models.Precedent{{Analysis: models.CaseAnalysis{Confidence: 1.0}}}
	got := calculateConfidence(1.0, precedents, 10)
	assert.Equal(t, 1.0, got)
}

func TestAnalyzeCaseRequiresFacts(t *testing.T) {
	svc := NewAnalysisService(
		AnalysisWithCaseRepository(repository.NewMemoryCaseRepository(ai.NewLocalEmbedder(128))),
		AnalysisWithAIManager(newTestManager("analysis")),
	)

	_, err := svc.AnalyzeCase(context.Background(), "", "california", "criminal")
	assert.ErrorIs(t, err, ErrCaseFactsRequired)
}

func TestAnalyzeCaseEndToEnd(t *testing.T) {
	repo := repository.NewMemoryCaseRepository(ai.NewLocalEmbedder(256))
	seed := []models.CaseRecord{
		{
			CaseName: "State v. Johnson", Court: "Superior Court", Date: "2023-01-15",
			Jurisdiction: "california", CaseType: "criminal",
			KeyFacts: []string{"Defendant charged with burglary of a residence"},
			Holding:  "Motion to suppress denied",
		},
		{
			CaseName: "People v. Williams", Court: "Superior Court", Date: "2022-08-20",
			Jurisdiction: "california", CaseType: "criminal",
			KeyFacts: []string{"Defendant charged with armed robbery"},
			Holding:  "Conviction affirmed, appeal failed",
		},
		{
			CaseName: "Smith v. Acme Corp", Court: "District Court", Date: "2021-02-02",
			Jurisdiction: "new_york", CaseType: "civil",
			KeyFacts: []string{"Breach of supply agreement"},
			Holding:  "Judgment granted for plaintiff",
		},
	}
	for i := range seed {
		_, err := repo.AddCase(context.Background(), &seed[i])
		require.NoError(t, err)
	}

	svc := NewAnalysisService(
		AnalysisWithCaseRepository(repo),
		AnalysisWithAIManager(newTestManager("The defense is highly confident given the precedents.")),
	)

	result, err := svc.AnalyzeCase(context.Background(),
		"defendant charged with burglary of a residence", "california", "criminal")
	require.NoError(t, err)

	// The civil New York case is filtered out
	require.Len(t, result.SimilarCases, 2)
	assert.Equal(t, "State v. Johnson", result.SimilarCases[0].CaseName)

	assert.Len(t, result.Precedents, 2)
	assert.Equal(t, "test-model", result.CaseAnalysis.ModelUsed)
	assert.Equal(t, 0.9, result.CaseAnalysis.Confidence)

	assert.Equal(t, 2, result.RiskAssessment.TotalSimilarCases)
	assert.NotEmpty(t, result.Recommendations)
	assert.Contains(t, result.Recommendations, "Study 2 similar cases for precedent")

	// 0.9*0.4 + (2/5)*0.3 + 0.9*0.3
	assert.InDelta(t, 0.75, result.ConfidenceScore, 1e-9)
}

func TestAnalyzeCaseEmptyRepository(t *testing.T) {
	svc := NewAnalysisService(
		AnalysisWithCaseRepository(repository.NewMemoryCaseRepository(ai.NewLocalEmbedder(128))),
		AnalysisWithAIManager(newTestManager("analysis text")),
	)

	result, err := svc.AnalyzeCase(context.Background(), "some facts", "", "")
	require.NoError(t, err)

	assert.Empty(t, result.SimilarCases)
	assert.Empty(t, result.Precedents)
	assert.Equal(t, models.RiskUnknown, result.RiskAssessment.RiskLevel)
	assert.Equal(t, 0.5, result.RiskAssessment.RiskScore)
	assert.NotContains(t, result.Recommendations, "Study 0 similar cases for precedent")
}

func TestGenerateDefenseUsesPrecedents(t *testing.T) {
	repo := repository.NewMemoryCaseRepository(ai.NewLocalEmbedder(256))
	c := models.CaseRecord{
		CaseName: "State v. Johnson", Court: "Superior Court", Date: "2023-01-15",
		Jurisdiction: "california", CaseType: "criminal",
		KeyFacts: []string{"Defendant charged with burglary"},
		Holding:  "Motion to suppress denied",
	}
	_, err := repo.AddCase(context.Background(), &c)
	require.NoError(t, err)

	svc := NewDefenseService(
		DefenseWithCaseRepository(repo),
		DefenseWithAIManager(newTestManager("Primary defense arguments follow.")),
	)

	strategy, err := svc.GenerateDefense(context.Background(), "defendant charged with burglary", "california")
	require.NoError(t, err)
	assert.Equal(t, 1, strategy.SimilarCasesUsed)
	assert.Equal(t, "test-model", strategy.ModelUsed)
	assert.NotEmpty(t, strategy.Strategy)
}

func TestGenerateDefenseRequiresFacts(t *testing.T) {
	svc := NewDefenseService(
		DefenseWithCaseRepository(repository.NewMemoryCaseRepository(ai.NewLocalEmbedder(128))),
		DefenseWithAIManager(newTestManager("strategy")),
	)

	_, err := svc.GenerateDefense(context.Background(), "", "california")
	assert.ErrorIs(t, err, ErrCaseFactsRequired)
}
