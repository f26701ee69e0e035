package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legalassist-backend/ai"
	"legalassist-backend/service"
)

// AnalysisHandler handles HTTP requests for case analysis and defense
// generation
type AnalysisHandler struct {
	analysisService *service.AnalysisService
	defenseService  *service.DefenseService
	aiMgr           *ai.Manager
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService, defenseService *service.DefenseService, aiMgr *ai.Manager) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		defenseService:  defenseService,
		aiMgr:           aiMgr,
	}
}

// AnalyzeCaseRequest is the request body for POST /api/analyze-case
type AnalyzeCaseRequest struct {
	CaseFacts    string `json:"case_facts" binding:"required"`
	Jurisdiction string `json:"jurisdiction"`
	CaseType     string `json:"case_type"`
}

// GenerateDefenseRequest is the request body for POST /api/generate-defense
type GenerateDefenseRequest struct {
	CaseFacts    string `json:"case_facts" binding:"required"`
	Jurisdiction string `json:"jurisdiction"`
}

// Health handles GET /health
func (h *AnalysisHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"status": "ok",
			"models": h.aiMgr.AvailableModels(),
		},
	})
}

// AnalyzeCase handles POST /api/analyze-case
func (h *AnalysisHandler) AnalyzeCase(c *gin.Context) {
	var req AnalyzeCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "case_facts is required",
			},
		})
		return
	}

	result, err := h.analysisService.AnalyzeCase(c.Request.Context(), req.CaseFacts, req.Jurisdiction, req.CaseType)
	if err != nil {
		status := http.StatusInternalServerError
		code := "ANALYSIS_FAILED"
		if errors.Is(err, ai.ErrNoModelAvailable) {
			status = http.StatusServiceUnavailable
			code = "NO_MODEL_AVAILABLE"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GenerateDefense handles POST /api/generate-defense
func (h *AnalysisHandler) GenerateDefense(c *gin.Context) {
	var req GenerateDefenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "case_facts is required",
			},
		})
		return
	}

	strategy, err := h.defenseService.GenerateDefense(c.Request.Context(), req.CaseFacts, req.Jurisdiction)
	if err != nil {
		status := http.StatusInternalServerError
		code := "DEFENSE_GENERATION_FAILED"
		if errors.Is(err, ai.ErrNoModelAvailable) {
			status = http.StatusServiceUnavailable
			code = "NO_MODEL_AVAILABLE"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    strategy,
	})
}

// DatabaseStats handles GET /api/database-stats
func (h *AnalysisHandler) DatabaseStats(c *gin.Context) {
	stats, err := h.analysisService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
