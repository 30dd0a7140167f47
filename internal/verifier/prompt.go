package verifier

import "fmt"

// noEvidence is the sentinel embedded in prompts when search found nothing.
// Evidence absence is valid input to verdict generation, not an error.
const noEvidence = "No relevant search results found."

func searchQueryPrompt(claim string) string {
	return fmt.Sprintf("Generate a simple, effective search engine query to verify this claim: %q. Return ONLY the query string, no quotes.", claim)
}

func claimVerdictPrompt(claim, evidence, language string) string {
	return fmt.Sprintf(`You are an expert Fact Checker.
Claim: %q
Evidence from Search: %q

Task: Determine verification status based on the evidence.
- "verified": Evidence directly and clearly supports the claim.
- "uncertain": Evidence is missing, unrelated, or inconclusive.
- "hallucinated": Evidence directly contradicts the claim or the claim is a known common AI hallucination.

IMPORTANT: Provide the explanation in the detected language: %s.

Return ONLY a JSON object:
{
	"status": "verified" | "uncertain" | "hallucinated",
	"confidence": 0.0-1.0,
	"explanation": "A concise explanation in %s. If no evidence was found, state that clearly."
}`, claim, evidence, language, language)
}

func citationVerdictPrompt(citation, searchTitle string) string {
	if searchTitle == "" {
		searchTitle = "No results"
	}
	return fmt.Sprintf(`You are a Citation Validator.
Citation: %q
Search Result: %q

Task: Verify if this citation is likely real or fabricated.
Return ONLY a JSON object:
{
	"isReal": true | false,
	"confidence": 0.0-1.0
}`, citation, searchTitle)
}
