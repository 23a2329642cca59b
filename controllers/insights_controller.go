package controllers

import (
	"net/http"

	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
)

type InsightsController struct {
	Learning *services.LearningService
	Scans    *services.ScanService
	Symptoms *services.SymptomService
	Profiles *services.ProfileService
	Alerts   *services.AlertBus
}

func NewInsightsController(
	learning *services.LearningService,
	scans *services.ScanService,
	symptoms *services.SymptomService,
	profiles *services.ProfileService,
	alerts *services.AlertBus,
) *InsightsController {
	return &InsightsController{
		Learning: learning,
		Scans:    scans,
		Symptoms: symptoms,
		Profiles: profiles,
		Alerts:   alerts,
	}
}

func (ic *InsightsController) load(c *gin.Context) (uint, *models.LearningInsights, bool) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, nil, false
	}

	profile, err := ic.Profiles.Get(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return 0, nil, false
	}
	scans, err := ic.Scans.History(userID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return 0, nil, false
	}
	logs, err := ic.Symptoms.List(userID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return 0, nil, false
	}

	insights := ic.Learning.GetOrCompute(profile, scans, logs)
	return userID, &insights, true
}

// Get returns the full learning aggregate: patterns, recommendations,
// data quality, and feedback-derived metrics.
func (ic *InsightsController) Get(c *gin.Context) {
	_, insights, ok := ic.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, insights)
}

func (ic *InsightsController) Recommendations(c *gin.Context) {
	userID, insights, ok := ic.load(c)
	if !ok {
		return
	}
	ic.Alerts.EmitRecommendationAlerts(userID, insights.Recommendations)
	c.JSON(http.StatusOK, gin.H{"recommendations": insights.Recommendations})
}

type applyInput struct {
	Recommendation models.AdaptiveRecommendation `json:"recommendation" binding:"required"`
}

// Apply accepts a recommendation and writes it into the gut profile. The
// resulting UpdatedAt change invalidates cached insights for the old
// profile version.
func (ic *InsightsController) Apply(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input applyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := ic.Profiles.ApplyRecommendation(userID, input.Recommendation)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}
