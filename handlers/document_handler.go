package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"legalassist-backend/service"
	"legalassist-backend/storage"
)

// DocumentHandler handles HTTP requests for document parsing, upload, and
// summarization
type DocumentHandler struct {
	documentService  *service.DocumentService
	store            storage.Storage
	maxFileSize      int64
	allowedMimeTypes map[string]bool
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *service.DocumentService, store storage.Storage) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		store:           store,
		maxFileSize:     10 * 1024 * 1024, // 10MB
		allowedMimeTypes: map[string]bool{
			"application/pdf":    true,
			"text/plain":         true,
			"application/msword": true, // .doc
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true, // .docx
		},
	}
}

// ParseDocumentRequest is the request body for POST /api/parse-document
type ParseDocumentRequest struct {
	Content string `json:"content" binding:"required"`
}

// SummarizeRequest is the request body for POST /api/documents/summarize.
// Either raw text or a stored document id must be provided.
type SummarizeRequest struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
}

// ParseDocument handles POST /api/parse-document
func (h *DocumentHandler) ParseDocument(c *gin.Context) {
	var req ParseDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "content is required",
			},
		})
		return
	}

	facts := h.documentService.ParseDocument(req.Content)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    facts,
	})
}

// UploadDocument handles POST /api/documents
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = inferMimeType(fileHeader.Filename)
	}

	if !h.allowedMimeTypes[mimeType] && !strings.HasPrefix(mimeType, "text/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "File type not allowed. Allowed types: PDF, TXT, DOC, DOCX",
			},
		})
		return
	}

	// index=true adds the extracted facts to the case repository
	index := c.PostForm("index") == "true"

	result, err := h.documentService.IngestDocument(c.Request.Context(), fileHeader.Filename, mimeType, file, index)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": fmt.Sprintf("Failed to ingest document: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}

// ListDocuments handles GET /api/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.documentService.ListDocuments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    docs,
	})
}

// SummarizeDocument handles POST /api/documents/summarize
func (h *DocumentHandler) SummarizeDocument(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Text == "" && req.DocumentID == "") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Either text or document_id is required",
			},
		})
		return
	}

	text := req.Text
	if text == "" {
		docID, err := uuid.Parse(req.DocumentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_DOCUMENT_ID",
					"message": "Invalid document_id format",
				},
			})
			return
		}

		text, err = h.loadDocumentText(c, docID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DOCUMENT_NOT_FOUND",
					"message": err.Error(),
				},
			})
			return
		}
	}

	summary, err := h.documentService.SummarizeDocument(c.Request.Context(), text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SUMMARIZATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

func (h *DocumentHandler) loadDocumentText(c *gin.Context, docID uuid.UUID) (string, error) {
	doc, err := h.documentService.GetDocument(c.Request.Context(), docID)
	if err != nil {
		return "", fmt.Errorf("document not found: %w", err)
	}
	return storage.ReadText(c.Request.Context(), h.store, doc.StoragePath)
}

func inferMimeType(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".txt"):
		return "text/plain"
	case strings.HasSuffix(lower, ".doc"):
		return "application/msword"
	case strings.HasSuffix(lower, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
