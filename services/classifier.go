package services

import (
	"fmt"
	"strings"

	"backend/models"
)

// IngredientClassifier applies user-declared triggers and the generic rule
// tables to a single ingredient string.
type IngredientClassifier struct {
	rules *TriggerRuleSet
}

func NewIngredientClassifier(rules *TriggerRuleSet) *IngredientClassifier {
	return &IngredientClassifier{rules: rules}
}

// Classify evaluates one ingredient against every enabled condition. A
// user-declared trigger match always resolves to severe and is not
// overridden by the generic tables for that condition. The function is
// total: empty text yields a non-problematic verdict.
func (c *IngredientClassifier) Classify(
	ingredient string,
	conditions []models.Condition,
	userTriggers map[models.Condition][]string,
) models.IngredientVerdict {
	verdict := models.IngredientVerdict{
		Ingredient: ingredient,
		Severity:   models.SeverityMild,
	}

	text := strings.ToLower(strings.TrimSpace(ingredient))
	if text == "" {
		return verdict
	}

	var reasons []string
	for _, cond := range conditions {
		if trigger, ok := matchUserTrigger(text, userTriggers[cond]); ok {
			verdict.IsProblematic = true
			verdict.Conditions = append(verdict.Conditions, cond)
			verdict.Severity = models.MaxSeverity(verdict.Severity, models.SeveritySevere)
			reasons = append(reasons, fmt.Sprintf("%s: known trigger for %s", trigger, cond))
			continue
		}

		rv := c.rules.Evaluate(cond, text)
		if rv.IsProblematic {
			verdict.IsProblematic = true
			verdict.Conditions = append(verdict.Conditions, cond)
			verdict.Severity = models.MaxSeverity(verdict.Severity, rv.Severity)
			reasons = append(reasons, fmt.Sprintf("%s (%s)", rv.Reason, cond))
		}
	}

	verdict.Reason = strings.Join(reasons, "; ")
	return verdict
}

func matchUserTrigger(text string, triggers []string) (string, bool) {
	for _, t := range triggers {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && strings.Contains(text, t) {
			return t, true
		}
	}
	return "", false
}
