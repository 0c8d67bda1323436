package llm

import (
	"fmt"
	"strings"
)

// ExtractionPrompt renders the fact-extraction prompt for a formatted
// conversation transcript. The model is instructed to answer with a bare
// JSON array of strings so the response parses without tool support.
func ExtractionPrompt(conversation string) string {
	return fmt.Sprintf(`Analyze the following conversation and extract the most important and useful information that should be remembered for future interactions. Focus on:
- Key facts about the user (preferences, background, goals)
- Important decisions or conclusions reached
- Specific requests or requirements mentioned
- Any information that would be valuable to remember in future conversations

Return ONLY a JSON array of strings, where each string is a distinct piece of information worth remembering. If there's nothing worth remembering, return an empty array [].

Example output format:
["User prefers Python over JavaScript", "User is building a chatbot for customer service", "User's deadline is end of March"]

Conversation:
%s

Important information to remember (JSON array only):`, conversation)
}

// ImageSummaryPrompt asks for a textual description of an image. The
// summary replaces the image in the extraction transcript.
const ImageSummaryPrompt = "Describe this image in detail, focusing on the key information it contains. " +
	"Be concise but comprehensive. If the image contains text, include the relevant text content."

// AdjudicationPrompt renders the duplicate-adjudication prompt: is the
// candidate fact already substantively covered by any existing memory?
// The model must answer starting with "yes" or "no".
func AdjudicationPrompt(candidate string, existing []string) string {
	var sb strings.Builder
	sb.WriteString("You are checking whether a new fact is already covered by stored memories.\n\n")
	sb.WriteString("New fact:\n")
	sb.WriteString(candidate)
	sb.WriteString("\n\nStored memories:\n")
	for i, m := range existing {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, m)
	}
	sb.WriteString("\nIs the new fact already substantively covered by any stored memory, ")
	sb.WriteString("including paraphrases of the same information? ")
	sb.WriteString(`Answer with exactly "yes" or "no" followed by a brief reason.`)
	return sb.String()
}

// RewritePrompt renders the query-rewriting prompt used before embedding a
// search query. The rewritten query should resolve pronouns and add
// synonyms so embedding similarity matches stored facts better.
func RewritePrompt(query string) string {
	return fmt.Sprintf(`Rewrite the following search query so it works well for embedding-based semantic search over short factual statements about a user. Expand pronouns, add close synonyms for key terms, and keep it to a single line. Return ONLY the rewritten query, no explanation.

Query: %s

Rewritten query:`, query)
}
