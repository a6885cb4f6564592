// Package cli formats command output for the solace CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/solace/internal/evaluation"
	"github.com/hyperjump/solace/internal/models"
	"github.com/hyperjump/solace/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, json)", s)
	}
}

const rule = "─────────────────────────────────────────────────────────"

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteRetrievalResults writes ranked fragments to w in the given format.
func WriteRetrievalResults(w io.Writer, response *models.RetrieveResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d fragments in %dms\n\n", len(response.Results), response.QueryTime)
	for i, r := range response.Results {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "Rank: %d | Similarity: %.4f\n", i+1, r.Similarity)
		fmt.Fprintf(w, "ID: %s\n", r.FragmentID)
		if r.ConversationID != "" {
			fmt.Fprintf(w, "Conversation: %s\n", r.ConversationID)
		}
		fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(r.Text, 200))
	}
	return nil
}

// WriteFragments writes fragments, newest first, to w in the given format.
func WriteFragments(w io.Writer, fragments []*models.Fragment, format OutputFormat) error {
	if format == OutputJSON {
		if fragments == nil {
			fragments = []*models.Fragment{}
		}
		return writeJSON(w, fragments)
	}
	if len(fragments) == 0 {
		fmt.Fprintln(w, "No fragments.")
		return nil
	}
	for _, f := range fragments {
		fmt.Fprintf(w, "#%d  %s  %s\n", f.Seq, f.CreatedAt.Format("2006-01-02 15:04:05"), utils.Truncate(f.Text, 120))
	}
	return nil
}

// WriteEvaluation writes an evaluation result to w in the given format.
func WriteEvaluation(w io.Writer, res *evaluation.Result, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	e := res.Evaluation
	fmt.Fprintf(w, "Evaluation #%d (%s)\n", res.RecordID, res.State)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Emotion:        %s\n", e.EmotionState)
	fmt.Fprintf(w, "Stress level:   %d/100\n", e.StressLevel)
	fmt.Fprintf(w, "GAD-7:          %d/21  %s\n", e.GAD7Score, e.GAD7Assessment)
	fmt.Fprintf(w, "PSS-10:         %d/40  %s\n", e.PSS10Score, e.PSS10Assessment)
	fmt.Fprintf(w, "MBI-SS:         exhaustion %d, cynicism %d, efficacy %d  %s\n",
		e.MBISSScore.EmotionalExhaustion, e.MBISSScore.Cynicism, e.MBISSScore.ProfessionalEfficacy, e.MBISSScore.Assessment)
	fmt.Fprintf(w, "\n%s\n", e.OverallMentalHealth)
	return nil
}

// WriteEvaluationHistory writes persisted evaluations, newest first.
func WriteEvaluationHistory(w io.Writer, records []*models.EvaluationRecord, format OutputFormat) error {
	if format == OutputJSON {
		if records == nil {
			records = []*models.EvaluationRecord{}
		}
		return writeJSON(w, records)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No evaluations.")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(w, "#%d  %s  %-8s stress=%d gad7=%d pss10=%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.EmotionState, r.StressLevel, r.GAD7Score, r.PSS10Score)
	}
	return nil
}
