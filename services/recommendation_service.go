package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"backend/models"
)

// Confidence thresholds for converting patterns into recommendations.
const (
	triggerAdditionMinConfidence = 0.7
	severityAdjustMinConfidence  = 0.8
	conditionToggleMinConfidence = 0.7
	priorityHighMinConfidence    = 0.8
	priorityMediumMinConfidence  = 0.6
)

var priorityRank = map[string]int{
	models.PriorityHigh:   3,
	models.PriorityMedium: 2,
	models.PriorityLow:    1,
}

// RecommendationEngine converts mined patterns into prioritized profile
// adjustments and applies accepted ones. Apply is a pure transform over a
// profile copy; callers persist the result and must serialize mutations per
// user.
type RecommendationEngine struct {
	now func() time.Time
}

func NewRecommendationEngine() *RecommendationEngine {
	return &RecommendationEngine{now: time.Now}
}

// Recommend derives recommendations from pattern insights. Results are
// sorted by priority then confidence, both descending.
func (e *RecommendationEngine) Recommend(
	patterns []models.PatternInsight,
	profile *models.GutProfile,
) []models.AdaptiveRecommendation {
	var out []models.AdaptiveRecommendation

	for _, p := range patterns {
		switch p.Type {
		case models.PatternFoodTrigger:
			out = append(out, e.triggerAdditions(p, profile)...)
		case models.PatternSymptom:
			out = append(out, e.severityAdjustments(p, profile)...)
			out = append(out, e.conditionToggles(p, profile)...)
		case models.PatternConditionCorrelation:
			out = append(out, e.conditionToggles(p, profile)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if priorityRank[out[i].Priority] != priorityRank[out[j].Priority] {
			return priorityRank[out[i].Priority] > priorityRank[out[j].Priority]
		}
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

func (e *RecommendationEngine) triggerAdditions(p models.PatternInsight, profile *models.GutProfile) []models.AdaptiveRecommendation {
	if p.Confidence <= triggerAdditionMinConfidence || p.Target == "" {
		return nil
	}

	var out []models.AdaptiveRecommendation
	for _, cond := range p.AffectedConditions {
		setting, ok := profile.Conditions[cond]
		if !ok || !setting.Enabled {
			continue
		}
		current := append([]string(nil), setting.KnownTriggers...)
		suggested := addTrigger(current, p.Target)
		if len(suggested) == len(current) {
			// Already a known trigger; nothing to recommend.
			continue
		}

		out = append(out, models.AdaptiveRecommendation{
			Type:           models.RecommendationTriggerAddition,
			Condition:      cond,
			Priority:       priorityFor(p.Confidence),
			Confidence:     p.Confidence,
			Description:    fmt.Sprintf("Add %q to your known %s triggers", p.Target, cond),
			CurrentValue:   strings.Join(current, ", "),
			SuggestedValue: strings.Join(suggested, ", "),
			Trigger:        p.Target,
			Reasoning: []string{
				p.Description,
				fmt.Sprintf("pattern confidence %.2f", p.Confidence),
			},
			Evidence: evidenceFrom(p),
		})
	}
	return out
}

func (e *RecommendationEngine) severityAdjustments(p models.PatternInsight, profile *models.GutProfile) []models.AdaptiveRecommendation {
	if p.Confidence <= severityAdjustMinConfidence {
		return nil
	}

	var out []models.AdaptiveRecommendation
	for _, cond := range p.AffectedConditions {
		setting, ok := profile.Conditions[cond]
		if !ok || !setting.Enabled || setting.Severity == models.SeveritySevere {
			continue
		}
		suggested := models.NextSeverity(setting.Severity)

		out = append(out, models.AdaptiveRecommendation{
			Type:           models.RecommendationSeverityAdjustment,
			Condition:      cond,
			Priority:       priorityFor(p.Confidence),
			Confidence:     p.Confidence,
			Description:    fmt.Sprintf("Raise %s severity from %s to %s", cond, setting.Severity, suggested),
			CurrentValue:   string(setting.Severity),
			SuggestedValue: string(suggested),
			Reasoning: []string{
				p.Description,
				fmt.Sprintf("symptom pattern confidence %.2f", p.Confidence),
			},
			Evidence: evidenceFrom(p),
		})
	}
	return out
}

func (e *RecommendationEngine) conditionToggles(p models.PatternInsight, profile *models.GutProfile) []models.AdaptiveRecommendation {
	if p.Confidence <= conditionToggleMinConfidence {
		return nil
	}

	var out []models.AdaptiveRecommendation
	for _, cond := range p.AffectedConditions {
		setting, tracked := profile.Conditions[cond]
		if tracked && setting.Enabled {
			continue
		}
		out = append(out, models.AdaptiveRecommendation{
			Type:           models.RecommendationConditionToggle,
			Condition:      cond,
			Priority:       priorityFor(p.Confidence),
			Confidence:     p.Confidence,
			Description:    fmt.Sprintf("Your history suggests enabling %s tracking", cond),
			CurrentValue:   "disabled",
			SuggestedValue: "enabled",
			Reasoning: []string{
				p.Description,
				fmt.Sprintf("pattern confidence %.2f", p.Confidence),
			},
			Evidence: evidenceFrom(p),
		})
	}
	return out
}

// Apply returns an updated profile copy with the recommendation applied.
// Applying the same recommendation twice yields the same conditions as
// applying it once: trigger additions are set unions, severity only ratchets
// forward, toggles only flip to enabled. Only UpdatedAt changes on a repeat
// application. Condition-scoped types reject unknown conditions so a bad
// payload can never reach the persisted condition map.
func (e *RecommendationEngine) Apply(rec models.AdaptiveRecommendation, profile *models.GutProfile) (*models.GutProfile, error) {
	if !knownRecommendation(rec.Type) {
		return nil, fmt.Errorf("unknown recommendation type %q", rec.Type)
	}

	updated := profile.Clone()
	updated.UpdatedAt = e.now()

	// Freeform advice that needs manual editing; no structured change.
	if rec.Type == models.RecommendationProfileUpdate {
		return updated, nil
	}

	if !rec.Condition.Valid() {
		return nil, fmt.Errorf("unknown condition %q", rec.Condition)
	}
	if updated.Conditions == nil {
		updated.Conditions = models.ConditionMap{}
	}
	setting := updated.Conditions[rec.Condition]
	if !setting.Severity.Valid() {
		// Previously untracked condition: start at the bottom of the scale.
		setting.Severity = models.SeverityMild
	}

	switch rec.Type {
	case models.RecommendationTriggerAddition:
		setting.KnownTriggers = addTrigger(setting.KnownTriggers, rec.Trigger)
	case models.RecommendationSeverityAdjustment:
		suggested := models.Severity(rec.SuggestedValue)
		if !suggested.Valid() {
			return nil, fmt.Errorf("invalid suggested severity %q", rec.SuggestedValue)
		}
		// Forward-only ratchet on the mild<moderate<severe scale.
		setting.Severity = models.MaxSeverity(setting.Severity, suggested)
	case models.RecommendationConditionToggle:
		setting.Enabled = true
	}

	updated.Conditions[rec.Condition] = setting
	return updated, nil
}

func priorityFor(confidence float64) string {
	switch {
	case confidence > priorityHighMinConfidence:
		return models.PriorityHigh
	case confidence > priorityMediumMinConfidence:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func evidenceFrom(p models.PatternInsight) models.RecommendationEvidence {
	return models.RecommendationEvidence{
		DataPoints:   p.Evidence.DataPoints,
		TimeSpanDays: p.Evidence.TimeSpanDays,
		Consistency:  p.Evidence.Consistency,
	}
}

// addTrigger unions a trigger into the list, case-insensitively.
func addTrigger(triggers []string, trigger string) []string {
	trigger = strings.ToLower(strings.TrimSpace(trigger))
	if trigger == "" {
		return triggers
	}
	for _, t := range triggers {
		if strings.EqualFold(strings.TrimSpace(t), trigger) {
			return triggers
		}
	}
	out := append([]string(nil), triggers...)
	return append(out, trigger)
}

func knownRecommendation(typ string) bool {
	switch typ {
	case models.RecommendationTriggerAddition,
		models.RecommendationSeverityAdjustment,
		models.RecommendationConditionToggle,
		models.RecommendationProfileUpdate:
		return true
	}
	return false
}
