package services

import (
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *RecommendationEngine {
	e := NewRecommendationEngine()
	e.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestRecommendSeverityAdjustment(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeverityMild},
	})
	patterns := []models.PatternInsight{{
		Type:               models.PatternSymptom,
		Target:             "cramping",
		Confidence:         0.85,
		AffectedConditions: []models.Condition{models.ConditionLactose},
	}}

	recs := e.Recommend(patterns, profile)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, models.RecommendationSeverityAdjustment, r.Type)
	assert.Equal(t, models.ConditionLactose, r.Condition)
	assert.Equal(t, string(models.SeverityMild), r.CurrentValue)
	assert.Equal(t, string(models.SeverityModerate), r.SuggestedValue)
	assert.Equal(t, models.PriorityHigh, r.Priority)
}

func TestRecommendSkipsSevereConditions(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeveritySevere},
	})
	patterns := []models.PatternInsight{{
		Type:               models.PatternSymptom,
		Confidence:         0.85,
		AffectedConditions: []models.Condition{models.ConditionLactose},
	}}

	assert.Empty(t, e.Recommend(patterns, profile))
}

func TestRecommendTriggerAddition(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeverityModerate},
	})
	patterns := []models.PatternInsight{{
		Type:               models.PatternFoodTrigger,
		Target:             "milk",
		Confidence:         0.75,
		AffectedConditions: []models.Condition{models.ConditionLactose},
		Evidence:           models.Evidence{DataPoints: 4, TimeSpanDays: 3, Consistency: 1},
	}}

	recs := e.Recommend(patterns, profile)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, models.RecommendationTriggerAddition, r.Type)
	assert.Equal(t, "milk", r.Trigger)
	assert.Equal(t, models.PriorityMedium, r.Priority)
	assert.Equal(t, 4, r.Evidence.DataPoints)
}

func TestRecommendSkipsKnownTriggers(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeverityModerate, KnownTriggers: []string{"Milk"}},
	})
	patterns := []models.PatternInsight{{
		Type:               models.PatternFoodTrigger,
		Target:             "milk",
		Confidence:         0.75,
		AffectedConditions: []models.Condition{models.ConditionLactose},
	}}

	assert.Empty(t, e.Recommend(patterns, profile))
}

func TestRecommendConditionToggleForUntracked(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{})
	patterns := []models.PatternInsight{{
		Type:               models.PatternConditionCorrelation,
		Target:             string(models.ConditionHistamine),
		Confidence:         0.75,
		AffectedConditions: []models.Condition{models.ConditionHistamine},
	}}

	recs := e.Recommend(patterns, profile)
	require.Len(t, recs, 1)
	assert.Equal(t, models.RecommendationConditionToggle, recs[0].Type)
	assert.Equal(t, "disabled", recs[0].CurrentValue)
	assert.Equal(t, "enabled", recs[0].SuggestedValue)
}

func TestRecommendThresholdIsStrict(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeverityMild},
	})
	patterns := []models.PatternInsight{{
		Type:               models.PatternFoodTrigger,
		Target:             "milk",
		Confidence:         0.7, // not above the gate
		AffectedConditions: []models.Condition{models.ConditionLactose},
	}}

	assert.Empty(t, e.Recommend(patterns, profile))
}

func TestRecommendOrderedByPriorityThenConfidence(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeverityMild},
		models.ConditionFodmap:  {Enabled: true, Severity: models.SeverityMild},
	})
	patterns := []models.PatternInsight{
		{
			Type:               models.PatternFoodTrigger,
			Target:             "onion",
			Confidence:         0.72,
			AffectedConditions: []models.Condition{models.ConditionFodmap},
		},
		{
			Type:               models.PatternSymptom,
			Target:             "cramping",
			Confidence:         0.85,
			AffectedConditions: []models.Condition{models.ConditionLactose},
		},
	}

	recs := e.Recommend(patterns, profile)
	require.Len(t, recs, 2)
	assert.Equal(t, models.PriorityHigh, recs[0].Priority)
	assert.Equal(t, models.PriorityMedium, recs[1].Priority)
}

func TestApplyTriggerAdditionIsIdempotent(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeverityMild},
	})
	rec := models.AdaptiveRecommendation{
		Type:      models.RecommendationTriggerAddition,
		Condition: models.ConditionLactose,
		Trigger:   " Milk ",
	}

	once, err := e.Apply(rec, profile)
	require.NoError(t, err)
	assert.Equal(t, []string{"milk"}, once.Conditions[models.ConditionLactose].KnownTriggers)

	e.now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }
	twice, err := e.Apply(rec, once)
	require.NoError(t, err)
	assert.Equal(t, once.Conditions, twice.Conditions)
	assert.True(t, twice.UpdatedAt.After(once.UpdatedAt))

	// The input profile is never mutated.
	assert.Empty(t, profile.Conditions[models.ConditionLactose].KnownTriggers)
}

func TestApplySeverityRatchetsForwardOnly(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionGluten: {Enabled: true, Severity: models.SeveritySevere},
	})
	rec := models.AdaptiveRecommendation{
		Type:           models.RecommendationSeverityAdjustment,
		Condition:      models.ConditionGluten,
		SuggestedValue: string(models.SeverityModerate),
	}

	updated, err := e.Apply(rec, profile)
	require.NoError(t, err)
	assert.Equal(t, models.SeveritySevere, updated.Conditions[models.ConditionGluten].Severity)
}

func TestApplySeverityAdjustment(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeverityMild},
	})
	rec := models.AdaptiveRecommendation{
		Type:           models.RecommendationSeverityAdjustment,
		Condition:      models.ConditionLactose,
		SuggestedValue: string(models.SeverityModerate),
	}

	updated, err := e.Apply(rec, profile)
	require.NoError(t, err)
	assert.Equal(t, models.SeverityModerate, updated.Conditions[models.ConditionLactose].Severity)
}

func TestApplyRejectsInvalidSeverity(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeverityMild},
	})
	rec := models.AdaptiveRecommendation{
		Type:           models.RecommendationSeverityAdjustment,
		Condition:      models.ConditionLactose,
		SuggestedValue: "extreme",
	}

	_, err := e.Apply(rec, profile)
	assert.Error(t, err)
}

func TestApplyConditionToggleDefaultsToMild(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{})
	rec := models.AdaptiveRecommendation{
		Type:      models.RecommendationConditionToggle,
		Condition: models.ConditionHistamine,
	}

	updated, err := e.Apply(rec, profile)
	require.NoError(t, err)
	setting := updated.Conditions[models.ConditionHistamine]
	assert.True(t, setting.Enabled)
	assert.Equal(t, models.SeverityMild, setting.Severity)
}

func TestApplyRejectsUnknownCondition(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeverityMild},
	})
	rec := models.AdaptiveRecommendation{
		Type:      models.RecommendationTriggerAddition,
		Condition: models.Condition("bogus"),
		Trigger:   "milk",
	}

	_, err := e.Apply(rec, profile)
	assert.Error(t, err)
	assert.NoError(t, profile.Validate())
}

func TestApplyProfileUpdateLeavesConditionsUntouched(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeverityMild},
	})

	updated, err := e.Apply(models.AdaptiveRecommendation{Type: models.RecommendationProfileUpdate}, profile)
	require.NoError(t, err)
	assert.Equal(t, profile.Conditions, updated.Conditions)
	assert.NoError(t, updated.Validate())
	assert.False(t, updated.UpdatedAt.IsZero())
}

func TestApplyTriggerAdditionOnUntrackedConditionDefaultsMild(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{})
	rec := models.AdaptiveRecommendation{
		Type:      models.RecommendationTriggerAddition,
		Condition: models.ConditionHistamine,
		Trigger:   "red wine",
	}

	updated, err := e.Apply(rec, profile)
	require.NoError(t, err)
	setting := updated.Conditions[models.ConditionHistamine]
	assert.Equal(t, models.SeverityMild, setting.Severity)
	assert.Equal(t, []string{"red wine"}, setting.KnownTriggers)
	assert.NoError(t, updated.Validate())
}

func TestApplyUnknownTypeErrors(t *testing.T) {
	e := newTestEngine()
	profile := profileWith(models.ConditionMap{})

	_, err := e.Apply(models.AdaptiveRecommendation{Type: "mystery"}, profile)
	assert.Error(t, err)
}
