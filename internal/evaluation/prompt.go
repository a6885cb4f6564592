package evaluation

import (
	"fmt"
	"strings"

	"github.com/hyperjump/solace/internal/models"
)

// DefaultQuestion is the request sent with every scheduled evaluation.
const DefaultQuestion = "Đánh giá tình trạng sức khỏe tinh thần của tôi"

const evaluationShape = `{
  "emotion_state": "<HAPPY | SAD | ANGRY | NEUTRAL>",
  "stress_level": <0-100>,
  "gad7_score": <0-21>,
  "gad7_assessment": "<severity>",
  "pss10_score": <0-40>,
  "pss10_assessment": "<severity>",
  "mbi_ss_score": {
    "emotional_exhaustion": <0-30>,
    "cynicism": <0-30>,
    "professional_efficacy": <0-30>,
    "assessment": "<severity>"
  },
  "overall_mental_health": "<short summary, at most 3 sentences>"
}`

// FormatMessages renders fragments as numbered messages in the order given.
func FormatMessages(fragments []*models.Fragment) string {
	parts := make([]string, len(fragments))
	for i, f := range fragments {
		parts[i] = fmt.Sprintf("[Message %d]\n%s", i+1, f.Text)
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt asks the generator for a JSON assessment of the user's recent messages.
func BuildPrompt(fragments []*models.Fragment, language, question string) string {
	if language == "" {
		language = "Vietnamese"
	}
	if question == "" {
		question = DefaultQuestion
	}

	var b strings.Builder
	b.WriteString("Based on the following system and context, analyze the user's psychological state and return the required metrics.\n\n")
	b.WriteString("System:\n")
	b.WriteString("You are a compassionate virtual psychological assessment assistant.\n")
	b.WriteString("You must:\n")
	b.WriteString("- Provide emotional understanding, not clinical diagnosis\n")
	b.WriteString("- Use the GAD-7, PSS-10 and MBI-SS scales with their official scoring\n")
	b.WriteString("- Be objective and concise, and make no medical claims\n")
	b.WriteString("- Answer in " + language + "\n")
	b.WriteString("- Context holds the user's latest messages, newest first\n\n")
	b.WriteString("Context:\n")
	b.WriteString(FormatMessages(fragments))
	b.WriteString("\n\nTask:\n")
	b.WriteString("Return only the following JSON object, with no text outside it:\n\n")
	b.WriteString(evaluationShape)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- \"emotion_state\" must be exactly one of HAPPY, SAD, ANGRY, NEUTRAL\n")
	b.WriteString("- When the context is unclear, infer the most likely state from the language used\n")
	b.WriteString("- \"overall_mental_health\" must be empathetic and non-judgmental\n")
	b.WriteString("- When the context is insufficient, return 0 for every score and ask the user to share more\n")
	b.WriteString("- Text fields are written in " + language + "\n\n")
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
