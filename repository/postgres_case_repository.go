package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"legalassist-backend/ai"
	"legalassist-backend/models"
)

// PostgresCaseRepository stores cases in Postgres with a pgvector column.
// Ranking happens in the database through the <=> cosine distance operator.
type PostgresCaseRepository struct {
	db       *pgxpool.Pool
	embedder ai.Embedder
}

// NewPostgresCaseRepository creates a Postgres-backed case repository
func NewPostgresCaseRepository(db *pgxpool.Pool, embedder ai.Embedder) *PostgresCaseRepository {
	return &PostgresCaseRepository{db: db, embedder: embedder}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// AddCase embeds the canonical case text and inserts the case in one
// statement, returning the assigned id
func (r *PostgresCaseRepository) AddCase(ctx context.Context, c *models.CaseRecord) (int64, error) {
	embedding, err := r.embedder.Embed(ctx, CanonicalCaseText(c))
	if err != nil {
		return 0, fmt.Errorf("failed to embed case %q: %w", c.CaseName, err)
	}
	if len(embedding) != r.embedder.Dimensions() {
		return 0, fmt.Errorf("embedding must be %d dimensions, got %d", r.embedder.Dimensions(), len(embedding))
	}

	query := `
		INSERT INTO legal_cases (
			case_name, court, date, jurisdiction, case_type,
			key_facts, legal_issues, holding, reasoning,
			citation, judges, parties, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::vector)
		RETURNING id`

	var id int64
	err = r.db.QueryRow(ctx, query,
		c.CaseName,
		c.Court,
		c.Date,
		c.Jurisdiction,
		c.CaseType,
		c.KeyFacts,
		c.LegalIssues,
		c.Holding,
		c.Reasoning,
		c.Citation,
		c.Judges,
		c.Parties,
		formatVector(embedding),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert case: %w", err)
	}

	c.ID = id
	c.Embedding = embedding
	return id, nil
}

// FindSimilar embeds the query text and returns up to limit cases ordered by
// cosine distance. Ties break on id so results are deterministic.
func (r *PostgresCaseRepository) FindSimilar(ctx context.Context, queryText string, filters CaseFilters, limit int) ([]models.CaseRecord, error) {
	if limit <= 0 {
		return []models.CaseRecord{}, nil
	}

	embedding, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	vectorStr := formatVector(embedding)

	conditions := []string{}
	args := []interface{}{vectorStr}
	if filters.Jurisdiction != "" {
		args = append(args, filters.Jurisdiction)
		conditions = append(conditions, fmt.Sprintf("jurisdiction = $%d", len(args)))
	}
	if filters.CaseType != "" {
		args = append(args, filters.CaseType)
		conditions = append(conditions, fmt.Sprintf("case_type = $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT
			id,
			case_name,
			court,
			date,
			jurisdiction,
			case_type,
			key_facts,
			legal_issues,
			holding,
			reasoning,
			citation,
			judges,
			parties,
			embedding <=> $1::vector AS distance
		FROM legal_cases
		%s
		ORDER BY
			embedding <=> $1::vector,
			id
		LIMIT $%d`, whereClause, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar cases: %w", err)
	}
	defer rows.Close()

	cases := []models.CaseRecord{}
	for rows.Next() {
		var c models.CaseRecord
		err := rows.Scan(
			&c.ID,
			&c.CaseName,
			&c.Court,
			&c.Date,
			&c.Jurisdiction,
			&c.CaseType,
			&c.KeyFacts,
			&c.LegalIssues,
			&c.Holding,
			&c.Reasoning,
			&c.Citation,
			&c.Judges,
			&c.Parties,
			&c.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cases: %w", err)
	}

	return cases, nil
}

// GetCase fetches one case by id
func (r *PostgresCaseRepository) GetCase(ctx context.Context, id int64) (*models.CaseRecord, error) {
	query := `
		SELECT
			id, case_name, court, date, jurisdiction, case_type,
			key_facts, legal_issues, holding, reasoning,
			citation, judges, parties
		FROM legal_cases
		WHERE id = $1`

	var c models.CaseRecord
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.CaseName,
		&c.Court,
		&c.Date,
		&c.Jurisdiction,
		&c.CaseType,
		&c.KeyFacts,
		&c.LegalIssues,
		&c.Holding,
		&c.Reasoning,
		&c.Citation,
		&c.Judges,
		&c.Parties,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to get case %d: %w", id, err)
	}

	return &c, nil
}

// Stats counts stored cases by jurisdiction and case type
func (r *PostgresCaseRepository) Stats(ctx context.Context) (*models.RepositoryStats, error) {
	stats := &models.RepositoryStats{
		Jurisdictions: make(map[string]int),
		CaseTypes:     make(map[string]int),
	}

	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM legal_cases`).Scan(&stats.TotalCases)
	if err != nil {
		return nil, fmt.Errorf("failed to count cases: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT jurisdiction, COUNT(*) FROM legal_cases GROUP BY jurisdiction`)
	if err != nil {
		return nil, fmt.Errorf("failed to count jurisdictions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var jurisdiction string
		var count int
		if err := rows.Scan(&jurisdiction, &count); err != nil {
			return nil, fmt.Errorf("failed to scan jurisdiction count: %w", err)
		}
		stats.Jurisdictions[jurisdiction] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jurisdiction counts: %w", err)
	}

	typeRows, err := r.db.Query(ctx, `SELECT case_type, COUNT(*) FROM legal_cases GROUP BY case_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count case types: %w", err)
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var caseType string
		var count int
		if err := typeRows.Scan(&caseType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan case type count: %w", err)
		}
		stats.CaseTypes[caseType] = count
	}
	if err := typeRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating case type counts: %w", err)
	}

	return stats, nil
}
