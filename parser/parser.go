package parser

import (
	"regexp"
	"strings"
)

// Facts holds the structured information extracted from a legal document.
// Scalar fields are nil when no pattern matched; list fields may be empty
// but are never nil.
type Facts struct {
	CaseName    *string  `json:"case_name"`
	Court       *string  `json:"court"`
	Date        *string  `json:"date"`
	Judges      []string `json:"judges"`
	Parties     []string `json:"parties"`
	Citation    *string  `json:"citation"`
	KeyFacts    []string `json:"key_facts"`
	LegalIssues []string `json:"legal_issues"`
	Holding     *string  `json:"holding"`
	Reasoning   []string `json:"reasoning"`
}

// Search windows and result caps. Headers (case name, court, date, citation)
// live in the leading portion of a legal document; scanning further mostly
// picks up false positives from the body.
const (
	headerWindow    = 2000
	entityWindow    = 3000
	sentenceWindow  = 50
	maxKeyFacts     = 10
	maxLegalIssues  = 5
	maxReasoning    = 5
	minFactLen      = 20
	minHoldingLen   = 30
	minReasoningLen = 30
)

var (
	caseNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:IN RE|In re|in re)\s+([A-Z][A-Z\s&,.]+)`),
		regexp.MustCompile(`([A-Z][A-Z\s&,.]+)\s+v\.\s+([A-Z][A-Z\s&,.]+)`),
		regexp.MustCompile(`([A-Z][A-Z\s&,.]+)\s+vs\.\s+([A-Z][A-Z\s&,.]+)`),
		regexp.MustCompile(`Case\s+No\.\s*[:\-]?\s*([A-Z0-9\-]+)`),
	}

	courtPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(Supreme Court|Court of Appeals|District Court|Circuit Court)`),
		regexp.MustCompile(`(Federal|State|County)\s+Court`),
		regexp.MustCompile(`([A-Z][a-z]+)\s+(Supreme|Appellate|District)\s+Court`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	}

	judgePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:Judge|Justice|Chief Justice)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
		regexp.MustCompile(`([A-Z][a-z]+\s+[A-Z][a-z]+),\s+(?:Judge|Justice)`),
	}

	partyPattern = regexp.MustCompile(`(?:Plaintiff|Defendant|Appellant|Appellee|Petitioner|Respondent)[:\s]+([A-Z][A-Za-z\s&,]+)`)

	citationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d+\s+[A-Z]+\s+\d+\s+\(\d{4}\)`),
		regexp.MustCompile(`\d+\s+[A-Z]+\s+\d+`),
		regexp.MustCompile(`[A-Z]+\s+\d+\s+[A-Z]+\s+\d+`),
	}

	sentenceSplit = regexp.MustCompile(`[.!?]+`)

	factKeywords      = []string{"alleged", "evidence", "witness", "testimony", "found", "determined"}
	issueKeywords     = []string{"issue", "question", "whether", "claim", "cause of action"}
	holdingKeywords   = []string{"hold", "holding", "conclude", "find", "determine", "rule"}
	reasoningKeywords = []string{"because", "therefore", "thus", "consequently", "reasoning"}
)

// Extract runs the full pattern battery over raw document text.
// Matchers are independent and best-effort: a field that cannot be
// extracted yields nil (or an empty list), never an error.
func Extract(content string) Facts {
	sentences := splitSentences(content)

	return Facts{
		CaseName:    ExtractCaseName(content),
		Court:       ExtractCourt(content),
		Date:        ExtractDate(content),
		Judges:      ExtractJudges(content),
		Parties:     ExtractParties(content),
		Citation:    ExtractCitation(content),
		KeyFacts:    keywordSentences(sentences, factKeywords, sentenceWindow, minFactLen, maxKeyFacts),
		LegalIssues: keywordSentences(sentences, issueKeywords, sentenceWindow, minFactLen, maxLegalIssues),
		Holding:     extractHolding(sentences),
		Reasoning:   keywordSentences(sentences, reasoningKeywords, 0, minReasoningLen, maxReasoning),
	}
}

// ExtractCaseName finds the case name within the document header.
// Patterns are tried in priority order: "In re", "v.", "vs.", "Case No."
func ExtractCaseName(content string) *string {
	return firstMatch(caseNamePatterns, head(content, headerWindow))
}

// ExtractCourt finds the court designation within the document header
func ExtractCourt(content string) *string {
	return firstMatch(courtPatterns, head(content, headerWindow))
}

// ExtractDate finds the first date in the header, trying numeric,
// textual ("Month D, Y") and ISO formats in that order
func ExtractDate(content string) *string {
	return firstMatch(datePatterns, head(content, headerWindow))
}

// ExtractJudges collects judge and justice names. Results are deduplicated;
// order is not guaranteed.
func ExtractJudges(content string) []string {
	window := head(content, entityWindow)

	var judges []string
	for _, pattern := range judgePatterns {
		for _, m := range pattern.FindAllStringSubmatch(window, -1) {
			judges = append(judges, strings.TrimSpace(m[1]))
		}
	}

	return dedupe(judges)
}

// ExtractParties collects role-labeled party names, deduplicated
func ExtractParties(content string) []string {
	window := head(content, entityWindow)

	var parties []string
	for _, m := range partyPattern.FindAllStringSubmatch(window, -1) {
		parties = append(parties, strings.TrimSpace(m[1]))
	}

	return dedupe(parties)
}

// ExtractCitation finds the first citation-shaped token in the header
func ExtractCitation(content string) *string {
	return firstMatch(citationPatterns, head(content, headerWindow))
}

// ExtractKeyFacts scans the leading sentences for fact-bearing keywords
func ExtractKeyFacts(content string) []string {
	return keywordSentences(splitSentences(content), factKeywords, sentenceWindow, minFactLen, maxKeyFacts)
}

// ExtractLegalIssues scans the leading sentences for issue-framing keywords
func ExtractLegalIssues(content string) []string {
	return keywordSentences(splitSentences(content), issueKeywords, sentenceWindow, minFactLen, maxLegalIssues)
}

// ExtractHolding returns the first sentence that reads like a holding, or nil
func ExtractHolding(content string) *string {
	return extractHolding(splitSentences(content))
}

// ExtractReasoning collects sentences carrying the court's reasoning
func ExtractReasoning(content string) []string {
	return keywordSentences(splitSentences(content), reasoningKeywords, 0, minReasoningLen, maxReasoning)
}

func extractHolding(sentences []string) *string {
	for _, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		if len(trimmed) > minHoldingLen && containsAny(trimmed, holdingKeywords) {
			return &trimmed
		}
	}
	return nil
}

// keywordSentences keeps, in original order, sentences containing any of the
// keywords and exceeding minLen. window bounds how many leading sentences are
// scanned (0 means all); limit caps the result.
func keywordSentences(sentences, keywords []string, window, minLen, limit int) []string {
	if window > 0 && len(sentences) > window {
		sentences = sentences[:window]
	}

	matches := make([]string, 0, limit)
	for _, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		if len(trimmed) > minLen && containsAny(trimmed, keywords) {
			matches = append(matches, trimmed)
			if len(matches) == limit {
				break
			}
		}
	}

	return matches
}

func splitSentences(content string) []string {
	return sentenceSplit.Split(content, -1)
}

func containsAny(sentence string, keywords []string) bool {
	lower := strings.ToLower(sentence)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func firstMatch(patterns []*regexp.Regexp, window string) *string {
	for _, pattern := range patterns {
		if m := pattern.FindString(window); m != "" {
			trimmed := strings.TrimSpace(m)
			return &trimmed
		}
	}
	return nil
}

func head(content string, n int) string {
	if len(content) > n {
		return content[:n]
	}
	return content
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	return unique
}
