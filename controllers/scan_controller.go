package controllers

import (
	"net/http"
	"strconv"

	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
)

type ScanController struct {
	Scans    *services.ScanService
	Profiles *services.ProfileService
	Alerts   *services.AlertBus
}

func NewScanController(scans *services.ScanService, profiles *services.ProfileService, alerts *services.AlertBus) *ScanController {
	return &ScanController{Scans: scans, Profiles: profiles, Alerts: alerts}
}

type analyzeInput struct {
	Food    models.FoodItem `json:"food" binding:"required"`
	Persist *bool           `json:"persist"`
}

// Analyze classifies a normalized food record against the caller's profile.
// By default the result is stored as a ScanRecord so it can feed pattern
// mining; pass persist=false for a dry run.
func (sc *ScanController) Analyze(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var input analyzeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := sc.Profiles.Get(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	analysis := sc.Scans.Analyze(input.Food, profile)

	resp := gin.H{"analysis": analysis}
	if input.Persist == nil || *input.Persist {
		rec, err := sc.Scans.RecordScan(userID, input.Food, analysis)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp["scan_id"] = rec.ID
		sc.Alerts.EmitScanAlert(userID, input.Food.Name, analysis)
	}

	c.JSON(http.StatusOK, resp)
}

func (sc *ScanController) History(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	recs, err := sc.Scans.History(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": recs})
}

type feedbackInput struct {
	Feedback string `json:"feedback" binding:"required"`
}

func (sc *ScanController) Feedback(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	scanID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scan id"})
		return
	}

	var input feedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sc.Scans.SubmitFeedback(userID, uint(scanID), input.Feedback); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feedback recorded"})
}
