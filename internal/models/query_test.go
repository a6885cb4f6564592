package models

import (
	"strings"
	"testing"
)

func TestRetrieveQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   *RetrieveQuery
		wantErr bool
		wantK   int
	}{
		{"empty query", &RetrieveQuery{Query: ""}, true, 0},
		{"whitespace query", &RetrieveQuery{Query: "   "}, true, 0},
		{"negative k", &RetrieveQuery{Query: "x", K: -1}, true, 0},
		{"sets default k", &RetrieveQuery{Query: "hello"}, false, DefaultK},
		{"keeps explicit k", &RetrieveQuery{Query: "hello", K: 3}, false, 3},
		{"caps k", &RetrieveQuery{Query: "x", K: 500}, false, MaxK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.query.K != tt.wantK {
				t.Errorf("K = %d, want %d", tt.query.K, tt.wantK)
			}
		})
	}
}

func TestChatQuery_Validate(t *testing.T) {
	q := &ChatQuery{Query: "  how do I sleep better?  "}
	if err := q.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if q.Query != "how do I sleep better?" {
		t.Errorf("query not trimmed: %q", q.Query)
	}

	err := (&ChatQuery{}).Validate()
	if err == nil || !strings.Contains(err.Error(), "query is required") {
		t.Errorf("expected required error, got %v", err)
	}
}

func TestEvaluation_Validate(t *testing.T) {
	valid := Evaluation{
		EmotionState: EmotionSad,
		StressLevel:  70,
		GAD7Score:    12,
		PSS10Score:   25,
		MBISSScore:   MBISSScore{EmotionalExhaustion: 20, Cynicism: 10, ProfessionalEfficacy: 15},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid evaluation rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(e *Evaluation)
		field  string
	}{
		{"unknown emotion", func(e *Evaluation) { e.EmotionState = "CALM" }, "emotion_state"},
		{"stress too high", func(e *Evaluation) { e.StressLevel = 101 }, "stress_level"},
		{"gad7 too high", func(e *Evaluation) { e.GAD7Score = 22 }, "gad7_score"},
		{"pss10 negative", func(e *Evaluation) { e.PSS10Score = -1 }, "pss10_score"},
		{"cynicism too high", func(e *Evaluation) { e.MBISSScore.Cynicism = 31 }, "mbi_ss_score.cynicism"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name field %s", err, tt.field)
			}
		})
	}
}

func TestEvaluationRecordRoundTrip(t *testing.T) {
	e := &Evaluation{
		EmotionState:        EmotionNeutral,
		StressLevel:         40,
		GAD7Score:           5,
		GAD7Assessment:      "mild",
		PSS10Score:          18,
		PSS10Assessment:     "moderate",
		MBISSScore:          MBISSScore{EmotionalExhaustion: 9, Cynicism: 8, ProfessionalEfficacy: 22, Assessment: "low"},
		OverallMentalHealth: "stable",
	}
	rec := &EvaluationRecord{ID: 3, UserID: 42}
	rec.Apply(e)
	if rec.ID != 3 || rec.UserID != 42 {
		t.Error("Apply must not touch identity fields")
	}
	if got := rec.Evaluation(); *got != *e {
		t.Errorf("round trip mismatch: %+v != %+v", got, e)
	}
}
