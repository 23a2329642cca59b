package models

import "time"

// Pattern families mined from scan and symptom history.
const (
	PatternFoodTrigger          = "food_trigger"
	PatternSymptom              = "symptom_pattern"
	PatternConditionCorrelation = "condition_correlation"
	PatternTiming               = "timing_pattern"
)

// Evidence backs a PatternInsight with the raw numbers behind it.
type Evidence struct {
	Frequency    float64 `json:"frequency"`   // 0..1
	Severity     float64 `json:"severity"`    // 0..10
	Consistency  float64 `json:"consistency"` // 0..1
	DataPoints   int     `json:"data_points,omitempty"`
	TimeSpanDays float64 `json:"time_span_days,omitempty"`
}

// PatternInsight is one mined observation. Insights are derived data:
// recomputed on each analysis run, never persisted as the source of truth.
type PatternInsight struct {
	Type               string      `json:"type"`
	Target             string      `json:"target,omitempty"` // ingredient, symptom type, or condition
	Confidence         float64     `json:"confidence"`       // 0..1, capped at 0.9
	Description        string      `json:"description"`
	Evidence           Evidence    `json:"evidence"`
	Recommendations    []string    `json:"recommendations,omitempty"`
	AffectedConditions []Condition `json:"affected_conditions,omitempty"`
}

// Recommendation types and priorities.
const (
	RecommendationTriggerAddition    = "trigger_addition"
	RecommendationSeverityAdjustment = "severity_adjustment"
	RecommendationConditionToggle    = "condition_toggle"
	RecommendationProfileUpdate      = "profile_update"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// RecommendationEvidence summarizes the data behind a recommendation.
type RecommendationEvidence struct {
	DataPoints   int     `json:"data_points"`
	TimeSpanDays float64 `json:"time_span_days"`
	Consistency  float64 `json:"consistency"`
}

// AdaptiveRecommendation is a proposed profile adjustment. Applying one is
// idempotent: trigger additions are set unions and severity adjustments only
// ratchet forward on the mild<moderate<severe scale.
type AdaptiveRecommendation struct {
	Type           string                 `json:"type"`
	Condition      Condition              `json:"condition"`
	Priority       string                 `json:"priority"`
	Confidence     float64                `json:"confidence"`
	Description    string                 `json:"description"`
	CurrentValue   string                 `json:"current_value"`
	SuggestedValue string                 `json:"suggested_value"`
	Trigger        string                 `json:"trigger,omitempty"` // for trigger_addition
	Reasoning      []string               `json:"reasoning"`
	Evidence       RecommendationEvidence `json:"evidence"`
}

// DataQuality scores how much signal the history currently holds.
type DataQuality struct {
	Completeness float64 `json:"completeness"` // 0..1
	Consistency  float64 `json:"consistency"`  // 0..1
	Recency      float64 `json:"recency"`      // 0..1
}

// LearningMetrics are derived from user feedback on past scans.
type LearningMetrics struct {
	LearningAccuracy   float64 `json:"learning_accuracy"`
	PredictionAccuracy float64 `json:"prediction_accuracy"`
	UserSatisfaction   float64 `json:"user_satisfaction"`
}

// LearningInsights is the aggregate handed to the presentation layer.
type LearningInsights struct {
	Patterns        []PatternInsight         `json:"patterns"`
	Recommendations []AdaptiveRecommendation `json:"recommendations"`
	Confidence      float64                  `json:"confidence"`
	DataQuality     DataQuality              `json:"data_quality"`
	Metrics         LearningMetrics          `json:"metrics"`
	LastUpdated     time.Time                `json:"last_updated"`
}
