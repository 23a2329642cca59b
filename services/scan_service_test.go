package services

import (
	"testing"
	"time"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanService() *ScanService {
	svc := NewScanService(nil, newTestClassifier(), NewAlternativeSuggester())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func profileWith(conditions models.ConditionMap) *models.GutProfile {
	return &models.GutProfile{UserID: 1, Conditions: conditions}
}

func TestAnalyzeFlagsSevereIngredientAsAvoid(t *testing.T) {
	svc := newTestScanService()
	profile := profileWith(models.ConditionMap{
		models.ConditionGluten: {Enabled: true, Severity: models.SeveritySevere},
	})
	food := models.FoodItem{
		Name:        "Sourdough Bread",
		Category:    "bakery",
		Ingredients: models.StringList{"wheat flour", "water", "salt", "yeast"},
		DataSource:  "catalog",
	}

	analysis := svc.Analyze(food, profile)

	assert.Equal(t, models.SafetyAvoid, analysis.OverallSafety)
	require.Len(t, analysis.FlaggedIngredients, 1)
	assert.Equal(t, "wheat flour", analysis.FlaggedIngredients[0].Ingredient)
	assert.Equal(t, models.SeveritySevere, analysis.FlaggedIngredients[0].Severity)

	require.Len(t, analysis.ConditionWarnings, 1)
	assert.Equal(t, models.ConditionGluten, analysis.ConditionWarnings[0].Condition)

	// catalog bonus 0.2 + ingredient list bonus 0.1, no allergen data,
	// flagged ratio 1/4 is under the penalty threshold
	assert.InDelta(t, 0.8, analysis.Confidence, 1e-9)
	assert.Contains(t, analysis.Explanation, "Sourdough Bread")

	assert.Contains(t, analysis.SafeAlternatives, "rice flour")
	assert.Contains(t, analysis.SafeAlternatives, "gluten-free bread")
}

func TestAnalyzeModerateOnlyIsCaution(t *testing.T) {
	svc := newTestScanService()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeverityModerate},
	})
	food := models.FoodItem{
		Name:        "Crackers",
		Ingredients: models.StringList{"rice flour", "cheese powder"},
		DataSource:  "manual",
	}

	analysis := svc.Analyze(food, profile)
	assert.Equal(t, models.SafetyCaution, analysis.OverallSafety)
}

func TestAnalyzeSevereDominatesModerate(t *testing.T) {
	svc := newTestScanService()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeveritySevere},
	})
	food := models.FoodItem{
		Name:        "Milk Chocolate",
		Ingredients: models.StringList{"cheese powder", "milk solids"},
		DataSource:  "verified",
	}

	analysis := svc.Analyze(food, profile)
	assert.Equal(t, models.SafetyAvoid, analysis.OverallSafety)
}

func TestAnalyzeNoIngredientsIsSafeAtNeutralConfidence(t *testing.T) {
	svc := newTestScanService()
	profile := profileWith(models.ConditionMap{
		models.ConditionGluten: {Enabled: true, Severity: models.SeveritySevere},
	})
	food := models.FoodItem{Name: "Mystery Snack", DataSource: "manual"}

	analysis := svc.Analyze(food, profile)

	assert.Equal(t, models.SafetySafe, analysis.OverallSafety)
	assert.Equal(t, 0.5, analysis.Confidence)
	assert.Empty(t, analysis.FlaggedIngredients)
	assert.Empty(t, analysis.ConditionWarnings)
}

func TestAnalyzeDisabledConditionsNeverFlag(t *testing.T) {
	svc := newTestScanService()
	profile := profileWith(models.ConditionMap{
		models.ConditionGluten: {Enabled: false, Severity: models.SeveritySevere},
	})
	food := models.FoodItem{
		Name:        "Bread",
		Ingredients: models.StringList{"wheat flour"},
		DataSource:  "manual",
	}

	analysis := svc.Analyze(food, profile)
	assert.Equal(t, models.SafetySafe, analysis.OverallSafety)
	assert.Empty(t, analysis.FlaggedIngredients)
}

func TestAggregateDoesNotMutateInputVerdicts(t *testing.T) {
	svc := newTestScanService()
	verdicts := []models.IngredientVerdict{{
		Ingredient:    "wheat flour",
		IsProblematic: true,
		Conditions:    []models.Condition{models.ConditionGluten},
		Severity:      models.SeveritySevere,
	}}
	food := models.FoodItem{Name: "Bread", Category: "bakery", DataSource: "manual"}

	analysis := svc.Aggregate(food, verdicts)

	assert.NotEmpty(t, analysis.FlaggedIngredients[0].Alternatives)
	assert.Nil(t, verdicts[0].Alternatives)
}

func TestAggregateKeepsPerVerdictAlternatives(t *testing.T) {
	svc := newTestScanService()
	profile := profileWith(models.ConditionMap{
		models.ConditionLactose: {Enabled: true, Severity: models.SeveritySevere},
	})
	food := models.FoodItem{
		Name:        "Alfredo Sauce",
		Category:    "dairy",
		Ingredients: models.StringList{"milk", "cream"},
		DataSource:  "manual",
	}

	analysis := svc.Analyze(food, profile)
	require.Len(t, analysis.FlaggedIngredients, 2)

	// The dairy category defaults belong to every flagged ingredient, not
	// just the first one encountered.
	for _, v := range analysis.FlaggedIngredients {
		assert.Contains(t, v.Alternatives, "oat milk", "ingredient %s", v.Ingredient)
	}
	assert.Contains(t, analysis.FlaggedIngredients[1].Alternatives, "coconut cream")

	// The analysis-wide union stays deduplicated and sorted.
	seen := map[string]int{}
	for _, alt := range analysis.SafeAlternatives {
		seen[alt]++
	}
	for alt, n := range seen {
		assert.Equal(t, 1, n, "alternative %s duplicated", alt)
	}
	assert.IsIncreasing(t, analysis.SafeAlternatives)
}

func TestScanConfidenceFlaggedRatioPenalty(t *testing.T) {
	food := models.FoodItem{
		Ingredients: models.StringList{"wheat flour", "barley malt"},
		DataSource:  "verified",
	}

	// Both ingredients flagged: 0.5 + 0.3 + 0.1 - 0.2 = 0.7
	assert.InDelta(t, 0.7, scanConfidence(food, 2, 2), 1e-9)
	// One of two flagged: no penalty, 0.5 + 0.3 + 0.1 = 0.9
	assert.InDelta(t, 0.9, scanConfidence(food, 1, 2), 1e-9)
}

func TestScanConfidenceUnknownSourceGetsManualBonus(t *testing.T) {
	food := models.FoodItem{
		Ingredients: models.StringList{"water"},
		DataSource:  "somewhere",
	}
	assert.InDelta(t, 0.7, scanConfidence(food, 0, 1), 1e-9)
}

func TestScanConfidenceAllergenBonusAndClamp(t *testing.T) {
	food := models.FoodItem{
		Ingredients: models.StringList{"water"},
		Allergens:   models.StringList{"soy"},
		DataSource:  "verified",
	}
	// 0.5 + 0.3 + 0.1 + 0.1 = 1.0, at the upper clamp
	assert.Equal(t, 1.0, scanConfidence(food, 0, 1))
}

func TestAnalyzeCapsIngredientCount(t *testing.T) {
	svc := newTestScanService()
	profile := profileWith(models.ConditionMap{
		models.ConditionGluten: {Enabled: true, Severity: models.SeveritySevere},
	})

	ingredients := make(models.StringList, 0, maxIngredients+50)
	for i := 0; i < maxIngredients+50; i++ {
		ingredients = append(ingredients, "water")
	}
	food := models.FoodItem{Name: "Padded", Ingredients: ingredients, DataSource: "manual"}

	analysis := svc.Analyze(food, profile)
	assert.Equal(t, models.SafetySafe, analysis.OverallSafety)
	assert.GreaterOrEqual(t, analysis.Confidence, 0.0)
	assert.LessOrEqual(t, analysis.Confidence, 1.0)
}
