package services

import (
	"strings"

	"backend/models"
)

// RuleTier is one severity band of keywords for a condition. Tiers are
// evaluated in order, so severe entries must precede moderate ones.
type RuleTier struct {
	Severity models.Severity `json:"severity"`
	Keywords []string        `json:"keywords"`
	Reason   string          `json:"reason"`
}

// RuleTables maps each condition to its ordered keyword tiers. Tables are
// data, not code: they can be replaced wholesale at startup (see
// config.LoadRuleTables) without touching the classifier.
type RuleTables map[models.Condition][]RuleTier

// RuleVerdict is the outcome of evaluating one condition against one
// normalized ingredient fragment.
type RuleVerdict struct {
	IsProblematic bool
	Severity      models.Severity
	Reason        string
}

// TriggerRuleSet evaluates ingredient text against per-condition keyword
// tables. It is pure and safe for concurrent use.
type TriggerRuleSet struct {
	tables RuleTables
}

func NewTriggerRuleSet(tables RuleTables) *TriggerRuleSet {
	if tables == nil {
		tables = DefaultRuleTables()
	}
	return &TriggerRuleSet{tables: tables}
}

// Evaluate checks the normalized ingredient text against the condition's
// tiers. Matching is case-insensitive substring containment; the first
// matching tier wins. Unmatched text is not problematic.
func (r *TriggerRuleSet) Evaluate(condition models.Condition, text string) RuleVerdict {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return RuleVerdict{Severity: models.SeverityMild}
	}
	for _, tier := range r.tables[condition] {
		for _, kw := range tier.Keywords {
			if strings.Contains(text, kw) {
				return RuleVerdict{
					IsProblematic: true,
					Severity:      tier.Severity,
					Reason:        tier.Reason,
				}
			}
		}
	}
	return RuleVerdict{Severity: models.SeverityMild}
}

// DefaultRuleTables returns the built-in keyword tables. Keywords are
// lowercase; matching is substring-based, so "wheat" also catches
// "wheat flour".
func DefaultRuleTables() RuleTables {
	return RuleTables{
		models.ConditionFodmap: {
			{
				Severity: models.SeveritySevere,
				Keywords: []string{
					"onion", "garlic", "high fructose corn syrup", "honey",
					"inulin", "chicory root", "agave", "wheat", "rye",
				},
				Reason: "high-FODMAP ingredient",
			},
			{
				Severity: models.SeverityModerate,
				Keywords: []string{
					"apple", "pear", "watermelon", "mango", "cauliflower",
					"mushroom", "cashew", "pistachio", "sorbitol", "mannitol",
				},
				Reason: "moderate-FODMAP ingredient",
			},
		},
		models.ConditionGluten: {
			{
				Severity: models.SeveritySevere,
				Keywords: []string{
					"wheat", "barley", "rye", "malt", "spelt", "triticale",
					"semolina", "farro", "seitan", "couscous",
				},
				Reason: "contains gluten",
			},
			{
				Severity: models.SeverityModerate,
				Keywords: []string{
					"oat", "soy sauce", "modified food starch", "brewer's yeast",
					"bran",
				},
				Reason: "possible gluten cross-contamination",
			},
		},
		models.ConditionLactose: {
			{
				Severity: models.SeveritySevere,
				Keywords: []string{
					"milk", "cream", "ice cream", "condensed milk",
					"evaporated milk", "whey", "milk solids", "lactose",
				},
				Reason: "high-lactose dairy",
			},
			{
				Severity: models.SeverityModerate,
				Keywords: []string{
					"cheese", "butter", "yogurt", "yoghurt", "sour cream",
					"buttermilk", "curd",
				},
				Reason: "dairy with moderate lactose",
			},
		},
		models.ConditionReflux: {
			{
				Severity: models.SeveritySevere,
				Keywords: []string{
					"chili", "cayenne", "hot sauce", "jalapeno", "horseradish",
				},
				Reason: "strong reflux trigger (spicy)",
			},
			{
				Severity: models.SeverityModerate,
				Keywords: []string{
					"tomato", "citrus", "lemon", "orange", "lime", "vinegar",
					"chocolate", "coffee", "peppermint", "fried", "onion",
				},
				Reason: "common reflux trigger",
			},
		},
		models.ConditionHistamine: {
			{
				Severity: models.SeveritySevere,
				Keywords: []string{
					"aged cheese", "fermented", "sauerkraut", "kimchi",
					"salami", "cured", "smoked fish", "anchov", "sardine",
					"yeast extract",
				},
				Reason: "high-histamine ingredient",
			},
			{
				Severity: models.SeverityModerate,
				Keywords: []string{
					"tomato", "spinach", "avocado", "eggplant", "vinegar",
					"wine", "soy sauce", "cocoa",
				},
				Reason: "histamine liberator",
			},
		},
		models.ConditionAllergies: {
			{
				Severity: models.SeveritySevere,
				Keywords: []string{
					"peanut", "almond", "cashew", "walnut", "hazelnut",
					"pecan", "pistachio", "shrimp", "crab", "lobster",
					"shellfish", "sesame",
				},
				Reason: "major allergen",
			},
			{
				Severity: models.SeverityModerate,
				Keywords: []string{
					"egg", "soy", "fish", "mustard", "celery", "sulfite",
				},
				Reason: "common allergen",
			},
		},
		models.ConditionAdditives: {
			{
				Severity: models.SeveritySevere,
				Keywords: []string{
					"monosodium glutamate", "msg", "sodium nitrite",
					"sodium nitrate", "tartrazine", "sulfur dioxide",
				},
				Reason: "additive with known sensitivity reports",
			},
			{
				Severity: models.SeverityModerate,
				Keywords: []string{
					"aspartame", "sucralose", "sorbitol", "xylitol",
					"carrageenan", "polysorbate", "sodium benzoate",
					"potassium sorbate", "artificial color", "artificial colour",
				},
				Reason: "additive some users react to",
			},
		},
	}
}
