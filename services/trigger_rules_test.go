package services

import (
	"testing"

	"backend/models"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateMatchesSevereTier(t *testing.T) {
	rules := NewTriggerRuleSet(nil)

	v := rules.Evaluate(models.ConditionGluten, "Wheat Flour")
	assert.True(t, v.IsProblematic)
	assert.Equal(t, models.SeveritySevere, v.Severity)
	assert.Equal(t, "contains gluten", v.Reason)
}

func TestEvaluateMatchesModerateTier(t *testing.T) {
	rules := NewTriggerRuleSet(nil)

	v := rules.Evaluate(models.ConditionGluten, "rolled oats")
	assert.True(t, v.IsProblematic)
	assert.Equal(t, models.SeverityModerate, v.Severity)
}

func TestEvaluateFirstTierWins(t *testing.T) {
	tables := RuleTables{
		models.ConditionAdditives: {
			{Severity: models.SeveritySevere, Keywords: []string{"msg"}, Reason: "severe"},
			{Severity: models.SeverityModerate, Keywords: []string{"msg"}, Reason: "moderate"},
		},
	}
	rules := NewTriggerRuleSet(tables)

	v := rules.Evaluate(models.ConditionAdditives, "contains msg")
	assert.Equal(t, models.SeveritySevere, v.Severity)
	assert.Equal(t, "severe", v.Reason)
}

func TestEvaluateUnmatchedIsNotProblematic(t *testing.T) {
	rules := NewTriggerRuleSet(nil)

	v := rules.Evaluate(models.ConditionGluten, "banana")
	assert.False(t, v.IsProblematic)
	assert.Equal(t, models.SeverityMild, v.Severity)
	assert.Empty(t, v.Reason)
}

func TestEvaluateEmptyText(t *testing.T) {
	rules := NewTriggerRuleSet(nil)

	v := rules.Evaluate(models.ConditionLactose, "   ")
	assert.False(t, v.IsProblematic)
}

func TestEvaluateUnknownConditionHasNoTable(t *testing.T) {
	rules := NewTriggerRuleSet(nil)

	v := rules.Evaluate(models.Condition("bogus"), "milk")
	assert.False(t, v.IsProblematic)
}
