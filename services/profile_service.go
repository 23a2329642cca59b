package services

import (
	"errors"
	"fmt"

	"backend/models"

	"gorm.io/gorm"
)

// ProfileService owns GutProfile reads and writes. Persisted rows are
// validated on the way out so the engine only ever sees well-formed
// profiles; malformed data is a storage-boundary error, never an engine one.
type ProfileService struct {
	db     *gorm.DB
	engine *RecommendationEngine
}

func NewProfileService(db *gorm.DB, engine *RecommendationEngine) *ProfileService {
	return &ProfileService{db: db, engine: engine}
}

// DefaultConditions returns a fresh condition map with every condition
// tracked but disabled at mild severity.
func DefaultConditions() models.ConditionMap {
	m := make(models.ConditionMap, len(models.AllConditions))
	for _, cond := range models.AllConditions {
		m[cond] = models.ConditionSetting{
			Enabled:       false,
			Severity:      models.SeverityMild,
			KnownTriggers: []string{},
		}
	}
	return m
}

// Get loads the user's profile, creating a default one on first access.
func (s *ProfileService) Get(userID uint) (*models.GutProfile, error) {
	var profile models.GutProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.GutProfile{
			UserID:     userID,
			Conditions: DefaultConditions(),
		}
		if err := s.db.Create(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt profile for user %d: %w", userID, err)
	}
	return &profile, nil
}

// Update replaces the condition map and preferences after validation.
func (s *ProfileService) Update(userID uint, conditions models.ConditionMap, restrictions, alternatives []string) (*models.GutProfile, error) {
	incoming := &models.GutProfile{Conditions: conditions}
	if err := incoming.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	profile.Conditions = conditions
	profile.DietaryRestrictions = restrictions
	profile.PreferredAlternatives = alternatives
	if err := s.db.Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// ApplyRecommendation applies an accepted recommendation and persists the
// updated profile inside a transaction. Profile mutations for one user must
// not run concurrently; the row is locked for the duration of the write.
func (s *ProfileService) ApplyRecommendation(userID uint, rec models.AdaptiveRecommendation) (*models.GutProfile, error) {
	var updated *models.GutProfile
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var profile models.GutProfile
		if err := tx.
			Set("gorm:query_option", "FOR UPDATE").
			Where("user_id = ?", userID).
			First(&profile).Error; err != nil {
			return err
		}
		if err := profile.Validate(); err != nil {
			return fmt.Errorf("corrupt profile for user %d: %w", userID, err)
		}

		applied, err := s.engine.Apply(rec, &profile)
		if err != nil {
			return err
		}
		if err := tx.Save(applied).Error; err != nil {
			return err
		}
		updated = applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
