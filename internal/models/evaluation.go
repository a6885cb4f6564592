package models

import "time"

// Emotion states a generated evaluation may report.
const (
	EmotionHappy   = "HAPPY"
	EmotionSad     = "SAD"
	EmotionAngry   = "ANGRY"
	EmotionNeutral = "NEUTRAL"
)

// MBISSScore holds the Maslach Burnout Inventory (student survey) sub-scores.
type MBISSScore struct {
	EmotionalExhaustion  int    `json:"emotional_exhaustion" validate:"gte=0,lte=30"`
	Cynicism             int    `json:"cynicism" validate:"gte=0,lte=30"`
	ProfessionalEfficacy int    `json:"professional_efficacy" validate:"gte=0,lte=30"`
	Assessment           string `json:"assessment"`
}

// Evaluation is the structured mental-health assessment produced by the generator
// and returned to callers.
type Evaluation struct {
	EmotionState        string     `json:"emotion_state" validate:"oneof=HAPPY SAD ANGRY NEUTRAL"`
	StressLevel         int        `json:"stress_level" validate:"gte=0,lte=100"`
	GAD7Score           int        `json:"gad7_score" validate:"gte=0,lte=21"`
	GAD7Assessment      string     `json:"gad7_assessment"`
	PSS10Score          int        `json:"pss10_score" validate:"gte=0,lte=40"`
	PSS10Assessment     string     `json:"pss10_assessment"`
	MBISSScore          MBISSScore `json:"mbi_ss_score"`
	OverallMentalHealth string     `json:"overall_mental_health"`
}

// Validate checks that every score is inside its scale's range.
func (e *Evaluation) Validate() error {
	return ValidateStruct(e)
}

// EvaluationRecord is the persisted form of an Evaluation.
type EvaluationRecord struct {
	ID                      int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                  int64     `gorm:"column:user_id;not null;index:idx_eval_user_created,priority:1" json:"user_id"`
	EmotionState            string    `gorm:"column:emotion_state;size:16;not null" json:"emotion_state"`
	StressLevel             int       `gorm:"column:stress_level;not null" json:"stress_level"`
	GAD7Score               int       `gorm:"column:gad7_score;not null" json:"gad7_score"`
	GAD7Assessment          string    `gorm:"column:gad7_assessment;type:text" json:"gad7_assessment"`
	PSS10Score              int       `gorm:"column:pss10_score;not null" json:"pss10_score"`
	PSS10Assessment         string    `gorm:"column:pss10_assessment;type:text" json:"pss10_assessment"`
	MBIEmotionalExhaustion  int       `gorm:"column:mbi_emotional_exhaustion;not null" json:"mbi_emotional_exhaustion"`
	MBICynicism             int       `gorm:"column:mbi_cynicism;not null" json:"mbi_cynicism"`
	MBIProfessionalEfficacy int       `gorm:"column:mbi_professional_efficacy;not null" json:"mbi_professional_efficacy"`
	MBIAssessment           string    `gorm:"column:mbi_assessment;type:text" json:"mbi_assessment"`
	OverallMentalHealth     string    `gorm:"column:overall_mental_health;type:text" json:"overall_mental_health"`
	CreatedAt               time.Time `gorm:"index:idx_eval_user_created,priority:2" json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func (EvaluationRecord) TableName() string { return "mental_health_evaluations" }

// Apply copies the evaluation's fields onto the record, leaving ID, UserID and timestamps alone.
func (r *EvaluationRecord) Apply(e *Evaluation) {
	r.EmotionState = e.EmotionState
	r.StressLevel = e.StressLevel
	r.GAD7Score = e.GAD7Score
	r.GAD7Assessment = e.GAD7Assessment
	r.PSS10Score = e.PSS10Score
	r.PSS10Assessment = e.PSS10Assessment
	r.MBIEmotionalExhaustion = e.MBISSScore.EmotionalExhaustion
	r.MBICynicism = e.MBISSScore.Cynicism
	r.MBIProfessionalEfficacy = e.MBISSScore.ProfessionalEfficacy
	r.MBIAssessment = e.MBISSScore.Assessment
	r.OverallMentalHealth = e.OverallMentalHealth
}

// Evaluation converts the record back to its API shape.
func (r *EvaluationRecord) Evaluation() *Evaluation {
	return &Evaluation{
		EmotionState:    r.EmotionState,
		StressLevel:     r.StressLevel,
		GAD7Score:       r.GAD7Score,
		GAD7Assessment:  r.GAD7Assessment,
		PSS10Score:      r.PSS10Score,
		PSS10Assessment: r.PSS10Assessment,
		MBISSScore: MBISSScore{
			EmotionalExhaustion:  r.MBIEmotionalExhaustion,
			Cynicism:             r.MBICynicism,
			ProfessionalEfficacy: r.MBIProfessionalEfficacy,
			Assessment:           r.MBIAssessment,
		},
		OverallMentalHealth: r.OverallMentalHealth,
	}
}
