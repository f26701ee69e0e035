package models

import (
	"database/sql/driver"
	"encoding/json"
)

// StringList is a list of strings stored as JSONB
type StringList []string

// Value implements driver.Valuer for JSONB
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = make(StringList, 0)
		return nil
	}

	// Handle different types that pgx might return for JSONB
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = make(StringList, 0)
		return nil
	}

	if len(bytes) == 0 {
		*l = make(StringList, 0)
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// CaseRecord represents one legal case or precedent in the similarity index.
// Records are immutable once inserted; the repository assigns the sequential ID.
type CaseRecord struct {
	ID           int64      `json:"id"`
	CaseName     string     `json:"case_name"`
	Court        string     `json:"court"`
	Date         string     `json:"date"` // loosely formatted, as extracted
	Jurisdiction string     `json:"jurisdiction"`
	CaseType     string     `json:"case_type"`
	KeyFacts     []string   `json:"key_facts"`
	LegalIssues  []string   `json:"legal_issues"`
	Holding      string     `json:"holding"`
	Reasoning    []string   `json:"reasoning"`
	Citation     *string    `json:"citation,omitempty"`
	Judges       StringList `json:"judges"`
	Parties      StringList `json:"parties"`
	Embedding    []float64  `json:"-"`
	Distance     float64    `json:"distance,omitempty"` // Vector similarity distance (query results only)
}

// RepositoryStats holds aggregate counts for the case repository
type RepositoryStats struct {
	TotalCases    int            `json:"total_cases"`
	Jurisdictions map[string]int `json:"jurisdictions"`
	CaseTypes     map[string]int `json:"case_types"`
}
