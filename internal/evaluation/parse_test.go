package evaluation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/solace/internal/apperr"
	"github.com/hyperjump/solace/internal/models"
)

const validJSON = `{
  "emotion_state": "SAD",
  "stress_level": 64,
  "gad7_score": 9,
  "gad7_assessment": "mild",
  "pss10_score": 22,
  "pss10_assessment": "moderate",
  "mbi_ss_score": {"emotional_exhaustion": 18, "cynicism": 7, "professional_efficacy": 20, "assessment": "at risk"},
  "overall_mental_health": "You have been carrying a lot lately."
}`

func TestParseEvaluation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bare", validJSON},
		{"fenced", "```json\n" + validJSON + "\n```"},
		{"upper fence", "```JSON\n" + validJSON + "\n```"},
		{"plain fence", "```\n" + validJSON + "\n```"},
		{"surrounding prose", "Here is the result:\n" + validJSON + "\nTake care."},
		{"trailing prose with braces", "```json\n" + validJSON + "\n``` thanks {ok}"},
		{"decimal scores", strings.NewReplacer(`"stress_level": 64`, `"stress_level": 64.0`, `"emotional_exhaustion": 18`, `"emotional_exhaustion": 1.8e1`).Replace(validJSON)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseEvaluation(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, models.EmotionSad, e.EmotionState)
			assert.Equal(t, 64, e.StressLevel)
			assert.Equal(t, 18, e.MBISSScore.EmotionalExhaustion)
			assert.Equal(t, "at risk", e.MBISSScore.Assessment)
		})
	}
}

func TestParseEvaluation_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", "   "},
		{"not json", "I cannot help with that."},
		{"truncated", validJSON[:40]},
		{"unknown emotion", strings.Replace(validJSON, `"SAD"`, `"CONFUSED"`, 1)},
		{"stress out of range", strings.Replace(validJSON, `"stress_level": 64`, `"stress_level": 140`, 1)},
		{"gad7 out of range", strings.Replace(validJSON, `"gad7_score": 9`, `"gad7_score": 22`, 1)},
		{"pss10 negative", strings.Replace(validJSON, `"pss10_score": 22`, `"pss10_score": -1`, 1)},
		{"mbi out of range", strings.Replace(validJSON, `"cynicism": 7`, `"cynicism": 31`, 1)},
		{"wrong type", strings.Replace(validJSON, `"stress_level": 64`, `"stress_level": "high"`, 1)},
		{"fractional score", strings.Replace(validJSON, `"gad7_score": 9`, `"gad7_score": 9.5`, 1)},
		{"huge score", strings.Replace(validJSON, `"stress_level": 64`, `"stress_level": 1e300`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseEvaluation(tt.raw)
			assert.Nil(t, e)
			assert.ErrorIs(t, err, apperr.ErrMalformedGenerationOutput)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	frags := []*models.Fragment{{Text: "newest"}, {Text: "older"}}
	p := BuildPrompt(frags, "", "")

	assert.Contains(t, p, "[Message 1]\nnewest\n\n[Message 2]\nolder")
	assert.Contains(t, p, "Answer in Vietnamese")
	assert.Contains(t, p, `"mbi_ss_score"`)
	assert.True(t, strings.HasSuffix(p, "Question: "+DefaultQuestion+"\n\nAnswer:"))

	p = BuildPrompt(nil, "English", "How am I doing?")
	assert.Contains(t, p, "Answer in English")
	assert.Contains(t, p, "Question: How am I doing?")
}
