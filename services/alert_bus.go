package services

import (
	"time"

	"backend/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AlertBus records alerts and fans them out to connected websocket clients.
// Alerts are advisory side-channel output (avoid verdicts, high-priority
// recommendations); failures here never fail the originating request.
type AlertBus struct {
	db  *gorm.DB
	hub *RealtimeHub
}

func NewAlertBus(db *gorm.DB, hub *RealtimeHub) *AlertBus {
	return &AlertBus{db: db, hub: hub}
}

func (b *AlertBus) Emit(userID uint, typ, message string) {
	alert := &models.Alert{UserID: userID, Type: typ, Message: message, CreatedAt: time.Now()}
	if err := b.db.Create(alert).Error; err != nil {
		logrus.WithError(err).Warn("failed to persist alert")
		return
	}
	if b.hub != nil {
		b.hub.BroadcastAlert(userID, map[string]any{
			"kind":  "alert.created",
			"alert": alert,
		})
	}
}

// EmitScanAlert raises a warning when a scan comes back at avoid level.
func (b *AlertBus) EmitScanAlert(userID uint, foodName string, analysis models.ScanAnalysis) {
	if analysis.OverallSafety != models.SafetyAvoid {
		return
	}
	b.Emit(userID, "warning", foodName+" was flagged avoid for your profile")
}

// EmitRecommendationAlerts surfaces high-priority recommendations.
func (b *AlertBus) EmitRecommendationAlerts(userID uint, recs []models.AdaptiveRecommendation) {
	for _, rec := range recs {
		if rec.Priority == models.PriorityHigh {
			b.Emit(userID, "info", rec.Description)
		}
	}
}

// List returns the user's stored alerts, newest first.
func (b *AlertBus) List(userID uint, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	var alerts []models.Alert
	err := b.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}
