package rag

import (
	"fmt"
	"strings"

	"github.com/hyperjump/solace/internal/models"
)

// DefaultSystemInstructions returns the assistant's standing instructions for the given
// answer language.
func DefaultSystemInstructions(language string) string {
	if language == "" {
		language = "Vietnamese"
	}
	return strings.Join([]string{
		"You are a compassionate mental health support assistant.",
		"You must:",
		"- Remember the user's emotional journey",
		"- Be empathetic",
		"- Avoid medical diagnosis",
		"- Offer emotional support, not clinical judgement",
		"- Answer in " + language,
		"- Context holds the user's earlier messages most related to the question",
	}, "\n")
}

// FormatContext renders ranked results as numbered documents separated by blank lines.
// Similarity is shown with three decimals.
func FormatContext(results []*models.RetrievalResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Document %d] (Similarity: %.3f)\n%s", i+1, r.Similarity, r.Text)
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt assembles the generation prompt from the system instructions, the ranked
// context and the question. Results are rendered in the order given.
func BuildPrompt(system string, results []*models.RetrievalResult, question string) string {
	var b strings.Builder
	b.WriteString("Based on the following system and context, answer the question.\n\n")
	b.WriteString("System:\n")
	b.WriteString(system)
	b.WriteString("\n\nContext:\n")
	b.WriteString(FormatContext(results))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
