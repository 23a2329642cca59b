package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxIngredients bounds worst-case cost on pathological payloads.
const maxIngredients = 200

// Confidence bonus per data-source reliability tag. Unknown tags get the
// manual-entry bonus.
var dataSourceBonus = map[string]float64{
	"verified": 0.3,
	"catalog":  0.2,
	"manual":   0.1,
}

var safetyExplanations = map[models.SafetyLevel]string{
	models.SafetySafe:    "%s looks safe for your current profile.",
	models.SafetyCaution: "%s contains ingredients that may bother you. Review the flagged list before eating.",
	models.SafetyAvoid:   "%s contains ingredients you should avoid based on your profile.",
}

// ScanService runs the per-scan analysis pipeline and persists the results.
type ScanService struct {
	db           *gorm.DB
	classifier   *IngredientClassifier
	alternatives *AlternativeSuggester
	now          func() time.Time
}

func NewScanService(db *gorm.DB, classifier *IngredientClassifier, alternatives *AlternativeSuggester) *ScanService {
	return &ScanService{
		db:           db,
		classifier:   classifier,
		alternatives: alternatives,
		now:          time.Now,
	}
}

// Analyze classifies every ingredient of the food item against the profile
// and folds the verdicts into one ScanAnalysis. It never errors: a food with
// no ingredients is safe at confidence 0.5.
func (s *ScanService) Analyze(food models.FoodItem, profile *models.GutProfile) models.ScanAnalysis {
	conditions := profile.EnabledConditions()
	triggers := profile.UserTriggers()

	ingredients := food.Ingredients
	if len(ingredients) > maxIngredients {
		ingredients = ingredients[:maxIngredients]
	}

	verdicts := make([]models.IngredientVerdict, 0, len(ingredients))
	for _, ing := range ingredients {
		verdicts = append(verdicts, s.classifier.Classify(ing, conditions, triggers))
	}
	return s.Aggregate(food, verdicts)
}

// Aggregate folds ingredient verdicts into the overall scan analysis.
// Overall safety is avoid iff any flagged verdict is severe, caution iff any
// is moderate, else safe.
func (s *ScanService) Aggregate(food models.FoodItem, verdicts []models.IngredientVerdict) models.ScanAnalysis {
	analysis := models.ScanAnalysis{
		OverallSafety:      models.SafetySafe,
		FlaggedIngredients: []models.IngredientVerdict{},
		ConditionWarnings:  []models.ConditionWarning{},
		SafeAlternatives:   []string{},
		DataSource:         food.DataSource,
		LastUpdated:        s.now(),
	}

	if len(verdicts) == 0 {
		analysis.Confidence = 0.5
		analysis.Explanation = fmt.Sprintf(safetyExplanations[models.SafetySafe], food.Name)
		return analysis
	}

	altSet := make(map[string]struct{})
	for _, v := range verdicts {
		if !v.IsProblematic {
			continue
		}
		// Each flagged ingredient keeps its own full alternative list; only
		// the analysis-wide SafeAlternatives union is deduplicated. The
		// verdict copy leaves the caller's slice untouched.
		alts := append([]string(nil), v.Alternatives...)
		seen := make(map[string]struct{}, len(alts))
		for _, alt := range alts {
			seen[alt] = struct{}{}
		}
		for _, cond := range v.Conditions {
			analysis.ConditionWarnings = append(analysis.ConditionWarnings, models.ConditionWarning{
				Ingredient: v.Ingredient,
				Condition:  cond,
				Severity:   v.Severity,
			})
			for _, alt := range s.alternatives.Suggest(food.Category, v.Ingredient, cond) {
				altSet[alt] = struct{}{}
				if _, dup := seen[alt]; dup {
					continue
				}
				seen[alt] = struct{}{}
				alts = append(alts, alt)
			}
		}
		v.Alternatives = alts
		analysis.FlaggedIngredients = append(analysis.FlaggedIngredients, v)

		switch v.Severity {
		case models.SeveritySevere:
			analysis.OverallSafety = models.SafetyAvoid
		case models.SeverityModerate:
			if analysis.OverallSafety != models.SafetyAvoid {
				analysis.OverallSafety = models.SafetyCaution
			}
		}
	}

	for alt := range altSet {
		analysis.SafeAlternatives = append(analysis.SafeAlternatives, alt)
	}
	sort.Strings(analysis.SafeAlternatives)

	analysis.Explanation = fmt.Sprintf(safetyExplanations[analysis.OverallSafety], food.Name)
	analysis.Confidence = scanConfidence(food, len(analysis.FlaggedIngredients), len(verdicts))
	return analysis
}

// scanConfidence starts at 0.5 and adds bonuses for data quality; a flagged
// ratio above one half signals rule-table noise and costs 0.2. Clamped to
// [0,1].
func scanConfidence(food models.FoodItem, flagged, total int) float64 {
	conf := 0.5

	bonus, ok := dataSourceBonus[food.DataSource]
	if !ok {
		bonus = dataSourceBonus["manual"]
	}
	conf += bonus

	if len(food.Ingredients) > 0 {
		conf += 0.1
	}
	if len(food.Allergens) > 0 {
		conf += 0.1
	}
	if total > 0 && float64(flagged)/float64(total) > 0.5 {
		conf -= 0.2
	}

	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}

// RecordScan persists an analyzed scan so it can feed pattern mining later.
func (s *ScanService) RecordScan(userID uint, food models.FoodItem, analysis models.ScanAnalysis) (*models.ScanRecord, error) {
	if food.ID == "" {
		food.ID = uuid.NewString()
	}
	rec := &models.ScanRecord{
		UserID:    userID,
		Food:      models.FoodSnapshot(food),
		Analysis:  analysis,
		ScannedAt: s.now(),
	}
	if err := s.db.Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// History returns the user's scans, newest first.
func (s *ScanService) History(userID uint, limit int) ([]models.ScanRecord, error) {
	if limit <= 0 || limit > historyWindow {
		limit = historyWindow
	}
	var recs []models.ScanRecord
	err := s.db.
		Where("user_id = ?", userID).
		Order("scanned_at DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// SubmitFeedback labels a scan accurate or inaccurate. Inaccurate scans are
// excluded from food-trigger mining.
func (s *ScanService) SubmitFeedback(userID, scanID uint, feedback string) error {
	if feedback != models.FeedbackAccurate && feedback != models.FeedbackInaccurate {
		return errors.New("feedback must be 'accurate' or 'inaccurate'")
	}
	var rec models.ScanRecord
	if err := s.db.Where("id = ? AND user_id = ?", scanID, userID).First(&rec).Error; err != nil {
		return err
	}
	rec.Feedback = feedback
	return s.db.Save(&rec).Error
}
