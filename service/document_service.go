package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"legalassist-backend/ai"
	"legalassist-backend/models"
	"legalassist-backend/parser"
	"legalassist-backend/repository"
	"legalassist-backend/storage"
)

var (
	ErrEmptyDocument       = errors.New("document content is empty")
	ErrDocumentStoreDown   = errors.New("document store unavailable")
	ErrSummarizationFailed = errors.New("document summarization failed")
)

// DocumentService handles document ingestion: storage, fact extraction, and
// optional indexing into the case repository
type DocumentService struct {
	docRepo  *repository.DocumentRepository
	caseRepo repository.CaseRepository
	store    storage.Storage
	aiMgr    *ai.Manager
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// DocumentWithRepository sets the document metadata repository
func DocumentWithRepository(repo *repository.DocumentRepository) DocumentServiceOption {
	return func(s *DocumentService) {
		s.docRepo = repo
	}
}

// DocumentWithCaseRepository sets the case repository used for indexing
func DocumentWithCaseRepository(repo repository.CaseRepository) DocumentServiceOption {
	return func(s *DocumentService) {
		s.caseRepo = repo
	}
}

// DocumentWithStorage sets the blob storage backend
func DocumentWithStorage(store storage.Storage) DocumentServiceOption {
	return func(s *DocumentService) {
		s.store = store
	}
}

// DocumentWithAIManager sets the narrative model manager
func DocumentWithAIManager(mgr *ai.Manager) DocumentServiceOption {
	return func(s *DocumentService) {
		s.aiMgr = mgr
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseDocument runs fact extraction over raw document text
func (s *DocumentService) ParseDocument(content string) parser.Facts {
	return parser.Extract(content)
}

// IngestResult is the outcome of a document ingestion
type IngestResult struct {
	Document *models.Document `json:"document"`
	Facts    parser.Facts     `json:"facts"`
	CaseID   *int64           `json:"case_id,omitempty"`
}

// IngestDocument stores the uploaded document, extracts structured facts,
// and, when index is set, builds a case record from them and adds it to the
// case repository. The stored blob is the source of truth; indexing failure
// does not roll back the upload.
func (s *DocumentService) IngestDocument(ctx context.Context, filename, mimeType string, data io.Reader, index bool) (*IngestResult, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(content) == 0 {
		return nil, ErrEmptyDocument
	}

	docID := uuid.New()
	storagePath, err := s.store.Upload(ctx, docID, filename, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	facts := parser.Extract(string(content))

	doc := &models.Document{
		ID:          docID,
		Filename:    filename,
		MimeType:    mimeType,
		Size:        int64(len(content)),
		StoragePath: storagePath,
	}

	result := &IngestResult{
		Document: doc,
		Facts:    facts,
	}

	if index && s.caseRepo != nil {
		record := BuildCaseRecord(facts, string(content), filename)
		caseID, err := s.caseRepo.AddCase(ctx, record)
		if err != nil {
			log.Printf("Warning: failed to index document %s as case: %v", filename, err)
		} else {
			doc.CaseID = &caseID
			result.CaseID = &caseID
		}
	}

	if s.docRepo != nil {
		if err := s.docRepo.Create(ctx, doc); err != nil {
			s.store.Delete(ctx, storagePath)
			return nil, fmt.Errorf("failed to save document record: %w", err)
		}
	}

	return result, nil
}

// GetDocument fetches stored document metadata by id
func (s *DocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	if s.docRepo == nil {
		return nil, ErrDocumentStoreDown
	}
	return s.docRepo.GetByID(ctx, id)
}

// ListDocuments returns stored document metadata, newest first
func (s *DocumentService) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	if s.docRepo == nil {
		return nil, ErrDocumentStoreDown
	}
	return s.docRepo.List(ctx)
}

// SummarizeDocument generates a narrative summary of document text
func (s *DocumentService) SummarizeDocument(ctx context.Context, text string) (*models.DocumentSummary, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	summary, err := s.aiMgr.SummarizeDocument(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}
	return summary, nil
}

// BuildCaseRecord turns extracted facts into a storable case record,
// inferring case type and jurisdiction from the content and falling back to
// defaults for fields the extraction missed
func BuildCaseRecord(facts parser.Facts, content, filename string) *models.CaseRecord {
	record := &models.CaseRecord{
		CaseName:     fallbackCaseName(facts.CaseName, content, filename),
		Court:        fallbackCourt(facts.Court, content),
		Date:         stringOr(facts.Date, "Unknown"),
		Jurisdiction: inferJurisdiction(facts.Court, content),
		CaseType:     inferCaseType(filename, content),
		KeyFacts:     facts.KeyFacts,
		LegalIssues:  facts.LegalIssues,
		Holding:      stringOr(facts.Holding, "No holding available"),
		Reasoning:    facts.Reasoning,
		Citation:     facts.Citation,
		Judges:       models.StringList(facts.Judges),
		Parties:      models.StringList(facts.Parties),
	}
	return record
}

// inferCaseType classifies a document by filename and content keywords.
// Civil is the default bucket.
func inferCaseType(filename, content string) string {
	contentLower := strings.ToLower(content)
	filenameLower := strings.ToLower(filename)

	switch {
	case strings.Contains(filenameLower, "criminal") ||
		strings.Contains(contentLower, "theft") ||
		strings.Contains(contentLower, "burglary"):
		return "criminal"
	case strings.Contains(filenameLower, "family") ||
		strings.Contains(contentLower, "marriage") ||
		strings.Contains(contentLower, "custody"):
		return "family"
	case strings.Contains(filenameLower, "employment") ||
		strings.Contains(contentLower, "employee") ||
		strings.Contains(contentLower, "harassment"):
		return "employment"
	case strings.Contains(filenameLower, "contract") ||
		strings.Contains(contentLower, "agreement"):
		return "contract"
	default:
		return "civil"
	}
}

// inferJurisdiction maps court text and content onto a jurisdiction tag
func inferJurisdiction(court *string, content string) string {
	courtLower := ""
	if court != nil {
		courtLower = strings.ToLower(*court)
	}
	contentLower := strings.ToLower(content)

	jurisdictions := []struct {
		tag      string
		courtKey string
		textKey  string
	}{
		{"federal", "federal", "united states"},
		{"new_york", "new york", "new york"},
		{"india", "india", "india"},
		{"tamil_nadu", "tamil nadu", "tamil nadu"},
		{"delhi", "delhi", "delhi"},
		{"gujarat", "gujarat", "gujarat"},
		{"maharashtra", "maharashtra", "maharashtra"},
		{"orissa", "orissa", "orissa"},
		{"sikkim", "sikkim", "sikkim"},
	}

	if strings.Contains(courtLower, "district") {
		return "federal"
	}
	for _, j := range jurisdictions {
		if strings.Contains(courtLower, j.courtKey) || strings.Contains(contentLower, j.textKey) {
			return j.tag
		}
	}
	return "california"
}

func fallbackCaseName(name *string, content, filename string) string {
	if name != nil && *name != "" {
		return *name
	}

	lines := strings.Split(content, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, "v.") && len(trimmed) > 10 {
			return trimmed
		}
	}

	return fmt.Sprintf("Case from %s", filename)
}

func fallbackCourt(court *string, content string) string {
	if court != nil && *court != "" {
		return *court
	}

	contentLower := strings.ToLower(content)
	switch {
	case strings.Contains(contentLower, "supreme court"):
		return "Supreme Court"
	case strings.Contains(contentLower, "court of appeal"):
		return "Court of Appeal"
	case strings.Contains(contentLower, "district court"):
		return "District Court"
	case strings.Contains(contentLower, "superior court"):
		return "Superior Court"
	default:
		return "Unknown Court"
	}
}

func stringOr(v *string, fallback string) string {
	if v != nil && *v != "" {
		return *v
	}
	return fallback
}
