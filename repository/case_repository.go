package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"legalassist-backend/models"
)

var (
	ErrCaseNotFound   = errors.New("case not found")
	ErrEmptyEmbedding = errors.New("embedding must not be empty")
)

// CaseFilters restricts a similarity query to matching metadata.
// Zero-valued fields do not filter.
type CaseFilters struct {
	Jurisdiction string
	CaseType     string
}

// CaseRepository is the vector-indexed store of precedent cases. Queries and
// inserts must share one embedding function; the repository owns the embedder
// so callers cannot mix spaces.
type CaseRepository interface {
	// AddCase embeds and stores a case, returning its assigned id.
	// The write is all-or-nothing.
	AddCase(ctx context.Context, c *models.CaseRecord) (int64, error)

	// FindSimilar returns up to limit cases ranked by ascending embedding
	// distance from the query text. No matches is an empty slice, not an
	// error.
	FindSimilar(ctx context.Context, queryText string, filters CaseFilters, limit int) ([]models.CaseRecord, error)

	// GetCase fetches one case by id
	GetCase(ctx context.Context, id int64) (*models.CaseRecord, error)

	// Stats reports repository totals broken down by jurisdiction and case type
	Stats(ctx context.Context) (*models.RepositoryStats, error)
}

// CanonicalCaseText serializes a case into the text that gets embedded and
// fed to precedent analysis. The layout is fixed: changing it reshapes the
// embedding space and strands previously indexed cases.
func CanonicalCaseText(c *models.CaseRecord) string {
	parts := []string{
		fmt.Sprintf("Case: %s", c.CaseName),
		fmt.Sprintf("Court: %s", c.Court),
		fmt.Sprintf("Date: %s", c.Date),
		fmt.Sprintf("Jurisdiction: %s", c.Jurisdiction),
		fmt.Sprintf("Case Type: %s", c.CaseType),
	}

	if len(c.KeyFacts) > 0 {
		parts = append(parts, "Key Facts: "+strings.Join(c.KeyFacts, " "))
	}
	if len(c.LegalIssues) > 0 {
		parts = append(parts, "Legal Issues: "+strings.Join(c.LegalIssues, " "))
	}
	if c.Holding != "" {
		parts = append(parts, fmt.Sprintf("Holding: %s", c.Holding))
	}
	if len(c.Reasoning) > 0 {
		parts = append(parts, "Reasoning: "+strings.Join(c.Reasoning, " "))
	}

	return strings.Join(parts, " | ")
}
