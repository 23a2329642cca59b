package services

import (
	"fmt"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// SymptomService owns SymptomLog reads and writes, validating severity
// ranges at the storage boundary.
type SymptomService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSymptomService(db *gorm.DB) *SymptomService {
	return &SymptomService{db: db, now: time.Now}
}

// Log persists one symptom episode. Severities outside 1-10 are rejected
// before the record can reach pattern mining.
func (s *SymptomService) Log(userID uint, log *models.SymptomLog) (*models.SymptomLog, error) {
	if len(log.Symptoms) == 0 {
		return nil, fmt.Errorf("at least one symptom is required")
	}
	for i, sym := range log.Symptoms {
		if sym.Type == "" {
			return nil, fmt.Errorf("symptom %d has no type", i)
		}
		if sym.Severity < 1 || sym.Severity > 10 {
			return nil, fmt.Errorf("symptom %q severity must be 1-10, got %d", sym.Type, sym.Severity)
		}
	}
	if log.StressLevel < 0 || log.StressLevel > 10 {
		return nil, fmt.Errorf("stress level must be 0-10")
	}

	log.UserID = userID
	if log.LoggedAt.IsZero() {
		log.LoggedAt = s.now()
	}
	if err := s.db.Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

// List returns the user's symptom logs, newest first.
func (s *SymptomService) List(userID uint, limit int) ([]models.SymptomLog, error) {
	if limit <= 0 || limit > historyWindow {
		limit = historyWindow
	}
	var logs []models.SymptomLog
	err := s.db.
		Where("user_id = ?", userID).
		Order("logged_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
