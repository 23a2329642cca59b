package services

import (
	"strings"

	"backend/models"
)

type ingredientConditionKey struct {
	ingredient string
	condition  models.Condition
}

// AlternativeSuggester maps flagged ingredients and food categories to
// substitution suggestions. Lookups never error; an unmapped key returns an
// empty list.
type AlternativeSuggester struct {
	byCategory map[string][]string
	byPair     map[ingredientConditionKey][]string
}

func NewAlternativeSuggester() *AlternativeSuggester {
	return &AlternativeSuggester{
		byCategory: map[string][]string{
			"dairy":     {"coconut milk", "almond milk", "oat milk"},
			"bakery":    {"gluten-free bread", "rice cakes", "corn tortillas"},
			"snacks":    {"plain popcorn", "rice crackers", "roasted chickpeas"},
			"beverages": {"herbal tea", "sparkling water"},
		},
		byPair: map[ingredientConditionKey][]string{
			{"wheat", models.ConditionGluten}:     {"rice flour", "almond flour", "coconut flour"},
			{"barley", models.ConditionGluten}:    {"quinoa", "millet"},
			{"rye", models.ConditionGluten}:       {"buckwheat", "sorghum flour"},
			{"milk", models.ConditionLactose}:     {"lactose-free milk", "oat milk", "almond milk"},
			{"cream", models.ConditionLactose}:    {"coconut cream", "cashew cream"},
			{"cheese", models.ConditionLactose}:   {"aged hard cheese", "dairy-free cheese"},
			{"butter", models.ConditionLactose}:   {"olive oil", "dairy-free spread"},
			{"onion", models.ConditionFodmap}:     {"green onion tops", "chives"},
			{"garlic", models.ConditionFodmap}:    {"garlic-infused oil"},
			{"honey", models.ConditionFodmap}:     {"maple syrup", "rice malt syrup"},
			{"apple", models.ConditionFodmap}:     {"banana", "blueberries"},
			{"tomato", models.ConditionReflux}:    {"roasted red pepper", "pumpkin puree"},
			{"coffee", models.ConditionReflux}:    {"chicory coffee", "rooibos tea"},
			{"chocolate", models.ConditionReflux}: {"carob"},
			{"peanut", models.ConditionAllergies}: {"sunflower seed butter", "pumpkin seeds"},
			{"soy", models.ConditionAllergies}:    {"coconut aminos"},
		},
	}
}

// Suggest returns substitutions for a flagged ingredient under a triggered
// condition, plus any category-level defaults.
func (a *AlternativeSuggester) Suggest(category, ingredient string, condition models.Condition) []string {
	ingredient = strings.ToLower(strings.TrimSpace(ingredient))
	var out []string

	// Pair lookups are keyed by base ingredient words, so scan for containment.
	for key, alts := range a.byPair {
		if key.condition == condition && strings.Contains(ingredient, key.ingredient) {
			out = append(out, alts...)
		}
	}

	if alts, ok := a.byCategory[strings.ToLower(strings.TrimSpace(category))]; ok {
		out = append(out, alts...)
	}
	return out
}
