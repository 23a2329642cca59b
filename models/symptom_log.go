package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Symptom is a single reported symptom inside a log entry.
type Symptom struct {
	Type              string    `json:"type"` // bloating, gas, cramping, ...
	Severity          int       `json:"severity"` // 1-10
	DurationMinutes   int       `json:"duration_minutes,omitempty"`
	Location          string    `json:"location,omitempty"`
	PotentialTriggers []string  `json:"potential_triggers,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// SymptomList is stored as a single JSON column.
type SymptomList []Symptom

func (l SymptomList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *SymptomList) Scan(src any) error { return scanJSON(src, l) }

// SymptomLog is one user-logged episode. Entries are never mutated except
// for explicit edits; LoggedAt ordering is the basis for pattern mining.
type SymptomLog struct {
	gorm.Model
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	Symptoms    SymptomList `gorm:"type:text" json:"symptoms"`
	FoodItems   StringList  `gorm:"type:text" json:"food_items"`
	LoggedAt    time.Time   `gorm:"index" json:"logged_at"`
	Mood        string      `gorm:"size:32" json:"mood,omitempty"`
	StressLevel int         `json:"stress_level,omitempty"` // 0-10, 0 = not recorded
	Weather     string      `gorm:"size:32" json:"weather,omitempty"`
}

// MaxSeverity returns the highest symptom severity in the log (0 when empty).
func (l *SymptomLog) MaxSeverity() int {
	max := 0
	for _, s := range l.Symptoms {
		if s.Severity > max {
			max = s.Severity
		}
	}
	return max
}
