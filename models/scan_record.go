package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// IngredientVerdict is the per-ingredient classification result.
type IngredientVerdict struct {
	Ingredient    string      `json:"ingredient"`
	IsProblematic bool        `json:"is_problematic"`
	Conditions    []Condition `json:"conditions,omitempty"`
	Severity      Severity    `json:"severity"`
	Reason        string      `json:"reason,omitempty"`
	Alternatives  []string    `json:"alternatives,omitempty"`
}

// ConditionWarning is one (ingredient, condition, severity) triple.
type ConditionWarning struct {
	Ingredient string    `json:"ingredient"`
	Condition  Condition `json:"condition"`
	Severity   Severity  `json:"severity"`
}

// ScanAnalysis is the engine's verdict for one scanned food item. It is
// immutable after creation.
type ScanAnalysis struct {
	OverallSafety      SafetyLevel         `json:"overall_safety"`
	FlaggedIngredients []IngredientVerdict `json:"flagged_ingredients"`
	ConditionWarnings  []ConditionWarning  `json:"condition_warnings"`
	SafeAlternatives   []string            `json:"safe_alternatives"`
	Explanation        string              `json:"explanation"`
	Confidence         float64             `json:"confidence"`
	DataSource         string              `json:"data_source"`
	LastUpdated        time.Time           `json:"last_updated"`
}

func (a ScanAnalysis) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	return string(b), err
}

func (a *ScanAnalysis) Scan(src any) error { return scanJSON(src, a) }

// FoodSnapshot stores the scanned item alongside its analysis.
type FoodSnapshot FoodItem

func (f FoodSnapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(f)
	return string(b), err
}

func (f *FoodSnapshot) Scan(src any) error { return scanJSON(src, f) }

// Feedback values a user may attach to a scan.
const (
	FeedbackAccurate   = "accurate"
	FeedbackInaccurate = "inaccurate"
)

// ScanRecord is one persisted scan: the food item, its analysis, and
// optional user feedback on accuracy.
type ScanRecord struct {
	gorm.Model
	UserID    uint         `gorm:"index;not null" json:"user_id"`
	Food      FoodSnapshot `gorm:"type:text" json:"food"`
	Analysis  ScanAnalysis `gorm:"type:text" json:"analysis"`
	ScannedAt time.Time    `gorm:"index" json:"scanned_at"`
	Feedback  string       `gorm:"size:16" json:"feedback,omitempty"` // "" | accurate | inaccurate
}
