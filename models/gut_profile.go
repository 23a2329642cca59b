package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Condition is a chronic digestive sensitivity category.
type Condition string

const (
	ConditionFodmap    Condition = "fodmap"
	ConditionGluten    Condition = "gluten"
	ConditionLactose   Condition = "lactose"
	ConditionReflux    Condition = "reflux"
	ConditionHistamine Condition = "histamine"
	ConditionAllergies Condition = "allergies"
	ConditionAdditives Condition = "additives"
)

// AllConditions lists every condition the rule engine knows about.
var AllConditions = []Condition{
	ConditionFodmap,
	ConditionGluten,
	ConditionLactose,
	ConditionReflux,
	ConditionHistamine,
	ConditionAllergies,
	ConditionAdditives,
}

// Severity is the ordered reaction level: mild < moderate < severe.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

var severityRank = map[Severity]int{
	SeverityMild:     1,
	SeverityModerate: 2,
	SeveritySevere:   3,
}

// Rank returns the position of s on the ordered scale (0 for unknown values).
func (s Severity) Rank() int { return severityRank[s] }

// Valid reports whether s is one of the three known levels.
func (s Severity) Valid() bool { return severityRank[s] != 0 }

// MaxSeverity returns the higher of a and b on the ordered scale.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// NextSeverity returns the level one step up, capped at severe.
func NextSeverity(s Severity) Severity {
	switch s {
	case SeverityMild:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// SafetyLevel is the overall verdict for a scanned food item.
type SafetyLevel string

const (
	SafetySafe    SafetyLevel = "safe"
	SafetyCaution SafetyLevel = "caution"
	SafetyAvoid   SafetyLevel = "avoid"
)

// ConditionSetting holds the per-condition part of a user's gut profile.
type ConditionSetting struct {
	Enabled       bool     `json:"enabled"`
	Severity      Severity `json:"severity"`
	KnownTriggers []string `json:"known_triggers"`
}

// ConditionMap is stored as a single JSON column.
type ConditionMap map[Condition]ConditionSetting

func (m ConditionMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *ConditionMap) Scan(src any) error {
	return scanJSON(src, m)
}

// StringList is a []string stored as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(src any) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}

// GutProfile is the user's chronic-condition profile. It is mutated only
// through explicit profile updates (direct edit or an accepted
// recommendation); UpdatedAt doubles as the version key for insight caching.
type GutProfile struct {
	gorm.Model
	UserID                uint         `gorm:"uniqueIndex;not null" json:"user_id"`
	Conditions            ConditionMap `gorm:"type:text" json:"conditions"`
	DietaryRestrictions   StringList   `gorm:"type:text" json:"dietary_restrictions"`
	PreferredAlternatives StringList   `gorm:"type:text" json:"preferred_alternatives"`
}

// Validate rejects malformed persisted data before it reaches the engine.
func (p *GutProfile) Validate() error {
	if p == nil {
		return errors.New("profile is nil")
	}
	for cond, setting := range p.Conditions {
		if !cond.Valid() {
			return fmt.Errorf("unknown condition %q", cond)
		}
		if !setting.Severity.Valid() {
			return fmt.Errorf("condition %q has invalid severity %q", cond, setting.Severity)
		}
	}
	return nil
}

// EnabledConditions returns the conditions switched on in the profile.
func (p *GutProfile) EnabledConditions() []Condition {
	out := make([]Condition, 0, len(p.Conditions))
	for _, cond := range AllConditions {
		if s, ok := p.Conditions[cond]; ok && s.Enabled {
			out = append(out, cond)
		}
	}
	return out
}

// UserTriggers returns the known-trigger sets for enabled conditions.
func (p *GutProfile) UserTriggers() map[Condition][]string {
	out := make(map[Condition][]string)
	for cond, s := range p.Conditions {
		if s.Enabled && len(s.KnownTriggers) > 0 {
			out[cond] = s.KnownTriggers
		}
	}
	return out
}

// Clone returns a deep copy so Apply can stay a pure transform.
func (p *GutProfile) Clone() *GutProfile {
	cp := *p
	cp.Conditions = make(ConditionMap, len(p.Conditions))
	for cond, s := range p.Conditions {
		triggers := make([]string, len(s.KnownTriggers))
		copy(triggers, s.KnownTriggers)
		s.KnownTriggers = triggers
		cp.Conditions[cond] = s
	}
	cp.DietaryRestrictions = append(StringList(nil), p.DietaryRestrictions...)
	cp.PreferredAlternatives = append(StringList(nil), p.PreferredAlternatives...)
	return &cp
}

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	for _, k := range AllConditions {
		if k == c {
			return true
		}
	}
	return false
}
