package evaluation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/hyperjump/solace/internal/apperr"
	"github.com/hyperjump/solace/internal/models"
)

// rawMBISS and rawEvaluation accept scores written as JSON numbers of any form (18, 18.0,
// 1.8e1). Only whole numbers convert to the integer model.
type rawMBISS struct {
	EmotionalExhaustion  float64 `json:"emotional_exhaustion"`
	Cynicism             float64 `json:"cynicism"`
	ProfessionalEfficacy float64 `json:"professional_efficacy"`
	Assessment           string  `json:"assessment"`
}

type rawEvaluation struct {
	EmotionState        string   `json:"emotion_state"`
	StressLevel         float64  `json:"stress_level"`
	GAD7Score           float64  `json:"gad7_score"`
	GAD7Assessment      string   `json:"gad7_assessment"`
	PSS10Score          float64  `json:"pss10_score"`
	PSS10Assessment     string   `json:"pss10_assessment"`
	MBISSScore          rawMBISS `json:"mbi_ss_score"`
	OverallMentalHealth string   `json:"overall_mental_health"`
}

// ParseEvaluation extracts the JSON assessment from generator output. Markdown code fences
// and surrounding prose are tolerated; the first JSON object in the output is used. Output
// that is not a valid, in-range assessment is MalformedGenerationOutput.
func ParseEvaluation(raw string) (*models.Evaluation, error) {
	const op = "evaluation.parse"

	body := stripFences(raw)
	if body == "" {
		return nil, apperr.New(apperr.KindMalformedGenerationOutput, op, "empty generator output")
	}
	start := strings.Index(body, "{")
	if start < 0 {
		return nil, apperr.New(apperr.KindMalformedGenerationOutput, op, "no JSON object in generator output")
	}

	var r rawEvaluation
	if err := json.NewDecoder(strings.NewReader(body[start:])).Decode(&r); err != nil {
		return nil, apperr.Wrap(apperr.KindMalformedGenerationOutput, op, err)
	}
	e, err := r.toModel()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindMalformedGenerationOutput, op, err)
	}
	if err := e.Validate(); err != nil {
		return nil, &apperr.Error{Kind: apperr.KindMalformedGenerationOutput, Op: op, Message: err.Error(), Err: err}
	}
	return e, nil
}

func (r *rawEvaluation) toModel() (*models.Evaluation, error) {
	e := &models.Evaluation{
		EmotionState:        r.EmotionState,
		GAD7Assessment:      r.GAD7Assessment,
		PSS10Assessment:     r.PSS10Assessment,
		OverallMentalHealth: r.OverallMentalHealth,
	}
	e.MBISSScore.Assessment = r.MBISSScore.Assessment

	scores := []struct {
		name string
		v    float64
		dst  *int
	}{
		{"stress_level", r.StressLevel, &e.StressLevel},
		{"gad7_score", r.GAD7Score, &e.GAD7Score},
		{"pss10_score", r.PSS10Score, &e.PSS10Score},
		{"mbi_ss_score.emotional_exhaustion", r.MBISSScore.EmotionalExhaustion, &e.MBISSScore.EmotionalExhaustion},
		{"mbi_ss_score.cynicism", r.MBISSScore.Cynicism, &e.MBISSScore.Cynicism},
		{"mbi_ss_score.professional_efficacy", r.MBISSScore.ProfessionalEfficacy, &e.MBISSScore.ProfessionalEfficacy},
	}
	for _, s := range scores {
		n, err := wholeNumber(s.v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		*s.dst = n
	}
	return e, nil
}

// wholeNumber converts v to an int when it has no fractional part. Magnitudes beyond any
// score scale are rejected before conversion.
func wholeNumber(v float64) (int, error) {
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%v is not a whole number", v)
	}
	if math.Abs(v) > 1e6 {
		return 0, fmt.Errorf("%v is out of range", v)
	}
	return int(v), nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(strings.ToLower(s), "```json"); i >= 0 {
		s = s[:i] + s[i+len("```json"):]
	}
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
