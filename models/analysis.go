package models

// RiskLevel classifies outcome favorability derived from precedent holdings
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskUnknown RiskLevel = "unknown"
)

// CaseAnalysis is the narrative output of one generation call
type CaseAnalysis struct {
	Analysis   string  `json:"analysis"`
	ModelUsed  string  `json:"model_used"`
	Confidence float64 `json:"confidence"`
}

// Precedent pairs a retrieved case with its narrative analysis
type Precedent struct {
	Case     CaseRecord   `json:"case"`
	Analysis CaseAnalysis `json:"analysis"`
}

// RiskAssessment summarizes favorable vs unfavorable outcomes among similar cases
type RiskAssessment struct {
	RiskLevel         RiskLevel `json:"risk_level"`
	RiskScore         float64   `json:"risk_score"`
	FavorableCases    int       `json:"favorable_cases"`
	UnfavorableCases  int       `json:"unfavorable_cases"`
	TotalSimilarCases int       `json:"total_similar_cases"`
	FavorableRatio    float64   `json:"favorable_ratio"`
}

// AnalysisResult is the output of one full case analysis run.
// It is created fresh per request and never persisted.
type AnalysisResult struct {
	CaseAnalysis    CaseAnalysis   `json:"case_analysis"`
	SimilarCases    []CaseRecord   `json:"similar_cases"`
	Precedents      []Precedent    `json:"precedents"`
	RiskAssessment  RiskAssessment `json:"risk_assessment"`
	Recommendations []string       `json:"recommendations"`
	ConfidenceScore float64        `json:"confidence_score"`
}

// DefenseStrategy is the narrative output of defense generation
type DefenseStrategy struct {
	Strategy         string  `json:"strategy"`
	ModelUsed        string  `json:"model_used"`
	SimilarCasesUsed int     `json:"similar_cases_used"`
	Confidence       float64 `json:"confidence"`
}

// DocumentSummary is the narrative summary of a document
type DocumentSummary struct {
	Summary   string `json:"summary"`
	ModelUsed string `json:"model_used"`
}
