package ai

import "fmt"

// Prompt templates for each narrative task. The generator is never given
// anything beyond the prompt text built here.

const promptTextLimit = 3000

func caseAnalysisPrompts(caseFacts, jurisdiction, caseType string) (system, user string) {
	system = "You are an expert legal analyst with deep knowledge of case law and legal precedents."

	user = fmt.Sprintf(`Case Facts: %s
Jurisdiction: %s
Case Type: %s

Please provide a comprehensive legal analysis including:
1. Key legal issues
2. Potential defenses
3. Relevant precedents
4. Risk assessment
5. Recommended strategy`, caseFacts, jurisdiction, caseType)

	return system, user
}

func defensePrompts(caseFacts, similarCasesText, jurisdiction string) (system, user string) {
	system = "You are a skilled defense attorney with expertise in crafting legal arguments."

	user = fmt.Sprintf(`Case Facts: %s
Similar Cases: %s
Jurisdiction: %s

Generate a defense strategy including:
1. Primary defense arguments
2. Supporting evidence requirements
3. Witness strategy
4. Cross-examination points
5. Closing argument framework`, caseFacts, similarCasesText, jurisdiction)

	return system, user
}

func precedentPrompts(caseName, caseText string) (system, user string) {
	system = "You are a legal researcher specializing in case law analysis."

	user = fmt.Sprintf(`Precedent Case: %s
Case Text: %s

Extract and analyze:
1. Key legal principles
2. Court's reasoning
3. Applicable holdings
4. Distinguishing factors
5. Relevance to similar cases`, caseName, truncate(caseText, promptTextLimit))

	return system, user
}

func summarizationPrompts(documentText string) (system, user string) {
	system = "You are a legal document analyst."

	user = fmt.Sprintf(`Please provide a comprehensive summary of this legal document:

%s

Focus on:
1. Key facts and issues
2. Legal principles involved
3. Court's decision
4. Important reasoning
5. Practical implications`, truncate(documentText, promptTextLimit))

	return system, user
}

func truncate(text string, limit int) string {
	if len(text) > limit {
		return text[:limit]
	}
	return text
}
