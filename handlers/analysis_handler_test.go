package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalassist-backend/ai"
	"legalassist-backend/models"
	"legalassist-backend/repository"
	"legalassist-backend/service"
	"legalassist-backend/storage"
)

type cannedGenerator struct {
	output string
}

func (g *cannedGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return g.output, nil
}

func (g *cannedGenerator) Name() string { return "canned-model" }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	embedder := ai.NewLocalEmbedder(256)
	caseRepo := repository.NewMemoryCaseRepository(embedder)

	seed := []models.CaseRecord{
		{
			CaseName: "State v. Johnson", Court: "Superior Court", Date: "2023-01-15",
			Jurisdiction: "california", CaseType: "criminal",
			KeyFacts: []string{"Defendant charged with burglary of a residence"},
			Holding:  "Motion granted in favor of defendant",
		},
		{
			CaseName: "People v. Williams", Court: "Superior Court", Date: "2022-08-20",
			Jurisdiction: "california", CaseType: "criminal",
			KeyFacts: []string{"Defendant charged with armed robbery"},
			Holding:  "Petition dismissed",
		},
	}
	for i := range seed {
		_, err := caseRepo.AddCase(context.Background(), &seed[i])
		require.NoError(t, err)
	}

	aiMgr := ai.NewManager(ai.WithBackend(&cannedGenerator{output: "I am confident in this analysis."}))

	analysisService := service.NewAnalysisService(
		service.AnalysisWithCaseRepository(caseRepo),
		service.AnalysisWithAIManager(aiMgr),
	)
	defenseService := service.NewDefenseService(
		service.DefenseWithCaseRepository(caseRepo),
		service.DefenseWithAIManager(aiMgr),
	)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	documentService := service.NewDocumentService(
		service.DocumentWithCaseRepository(caseRepo),
		service.DocumentWithStorage(store),
		service.DocumentWithAIManager(aiMgr),
	)

	analysisHandler := NewAnalysisHandler(analysisService, defenseService, aiMgr)
	documentHandler := NewDocumentHandler(documentService, store)

	router := gin.New()
	router.GET("/health", analysisHandler.Health)
	api := router.Group("/api")
	{
		api.POST("/analyze-case", analysisHandler.AnalyzeCase)
		api.POST("/generate-defense", analysisHandler.GenerateDefense)
		api.GET("/database-stats", analysisHandler.DatabaseStats)
		api.POST("/parse-document", documentHandler.ParseDocument)
		api.POST("/documents", documentHandler.UploadDocument)
		api.GET("/documents", documentHandler.ListDocuments)
		api.POST("/documents/summarize", documentHandler.SummarizeDocument)
	}
	return router
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "canned-model")
}

func TestAnalyzeCaseEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/analyze-case", gin.H{
		"case_facts":   "defendant charged with burglary of a residence",
		"jurisdiction": "california",
		"case_type":    "criminal",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(env.Data, &result))

	assert.Len(t, result.SimilarCases, 2)
	assert.Equal(t, "State v. Johnson", result.SimilarCases[0].CaseName)
	assert.Equal(t, models.RiskMedium, result.RiskAssessment.RiskLevel)
	assert.NotEmpty(t, result.Recommendations)
	assert.Greater(t, result.ConfidenceScore, 0.0)
}

func TestAnalyzeCaseMissingFacts(t *testing.T) {
	router := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/analyze-case", gin.H{
		"jurisdiction": "california",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestGenerateDefenseEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/generate-defense", gin.H{
		"case_facts":   "defendant charged with burglary",
		"jurisdiction": "california",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var strategy models.DefenseStrategy
	require.NoError(t, json.Unmarshal(env.Data, &strategy))
	assert.Equal(t, 2, strategy.SimilarCasesUsed)
	assert.NotEmpty(t, strategy.Strategy)
}

func TestDatabaseStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodGet, "/api/database-stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.RepositoryStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.TotalCases)
	assert.Equal(t, 2, stats.CaseTypes["criminal"])
}

func TestParseDocumentEndpoint(t *testing.T) {
	router := newTestRouter(t)

	content := "IN RE ESTATE OF SMITH, Case No. 12-345. Filed January 5, 2023. " +
		"The witness provided testimony regarding the signing of the will."
	w, env := doJSON(t, router, http.MethodPost, "/api/parse-document", gin.H{
		"content": content,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var facts map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &facts))
	require.NotNil(t, facts["case_name"])
	assert.Contains(t, facts["case_name"].(string), "ESTATE OF SMITH")
}

func TestParseDocumentMissingContent(t *testing.T) {
	router := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/parse-document", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestUploadDocumentEndpoint(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="opinion.txt"`)
	header.Set("Content-Type", "text/plain")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("STATE v. JOHNSON, Case No. CR-2023-001. The defendant was alleged to have committed burglary of the residence."))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("index", "true"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success)

	var result service.IngestResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "opinion.txt", result.Document.Filename)
	require.NotNil(t, result.CaseID)

	// The indexed case shows up in the stats
	_, statsEnv := doJSON(t, router, http.MethodGet, "/api/database-stats", nil)
	var stats models.RepositoryStats
	require.NoError(t, json.Unmarshal(statsEnv.Data, &stats))
	assert.Equal(t, 3, stats.TotalCases)
}

func TestUploadDocumentMissingFile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummarizeDocumentEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/documents/summarize", gin.H{
		"text": "A lengthy legal opinion about contract formation and consideration.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var summary models.DocumentSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, "I am confident in this analysis.", summary.Summary)
	assert.Equal(t, "canned-model", summary.ModelUsed)
}

func TestSummarizeDocumentRequiresInput(t *testing.T) {
	router := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/documents/summarize", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}
