package services

import (
	"math"
	"sync"
	"time"

	"backend/models"

	"github.com/sirupsen/logrus"
)

const insightTTL = time.Hour

// neutralPrior is used for feedback-derived metrics when no feedback exists
// yet, so unused features are not penalized down to zero.
const neutralPrior = 0.5

type cacheKey struct {
	userID  uint
	version int64 // profile.UpdatedAt, nanoseconds
}

type cacheEntry struct {
	insights   models.LearningInsights
	insertedAt time.Time
}

// LearningService memoizes mined insights per profile version with a fixed
// TTL. Recomputation is pure, so the lock only prevents duplicate work; an
// injectable clock keeps TTL behavior testable.
type LearningService struct {
	analyzer *PatternAnalyzer
	engine   *RecommendationEngine

	mu    sync.Mutex
	cache map[cacheKey]cacheEntry
	now   func() time.Time
}

func NewLearningService(analyzer *PatternAnalyzer, engine *RecommendationEngine) *LearningService {
	return &LearningService{
		analyzer: analyzer,
		engine:   engine,
		cache:    make(map[cacheKey]cacheEntry),
		now:      time.Now,
	}
}

// GetOrCompute returns the cached insights for the profile version, or mines
// them fresh when the entry is missing or older than one hour. A profile
// edit changes UpdatedAt and therefore the key, invalidating early.
func (s *LearningService) GetOrCompute(
	profile *models.GutProfile,
	scans []models.ScanRecord,
	logs []models.SymptomLog,
) models.LearningInsights {
	key := cacheKey{userID: profile.UserID, version: profile.UpdatedAt.UnixNano()}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.cache[key]; ok && s.now().Sub(entry.insertedAt) < insightTTL {
		return entry.insights
	}

	// Miss: evict this user's superseded versions and any expired entries so
	// the map stays bounded by active users.
	for k, e := range s.cache {
		if k.userID == profile.UserID || s.now().Sub(e.insertedAt) >= insightTTL {
			delete(s.cache, k)
		}
	}

	logrus.WithFields(logrus.Fields{
		"user_id": profile.UserID,
		"scans":   len(scans),
		"logs":    len(logs),
	}).Debug("recomputing learning insights")

	insights := s.compute(profile, scans, logs)
	s.cache[key] = cacheEntry{insights: insights, insertedAt: s.now()}
	return insights
}

func (s *LearningService) compute(
	profile *models.GutProfile,
	scans []models.ScanRecord,
	logs []models.SymptomLog,
) models.LearningInsights {
	patterns := s.analyzer.Analyze(scans, logs, profile)
	recommendations := s.engine.Recommend(patterns, profile)

	return models.LearningInsights{
		Patterns:        patterns,
		Recommendations: recommendations,
		Confidence:      overallConfidence(patterns),
		DataQuality:     s.dataQuality(scans, logs),
		Metrics:         feedbackMetrics(scans),
		LastUpdated:     s.now(),
	}
}

// dataQuality scores how much signal the accumulated history holds:
// completeness from raw volume, consistency from event spacing, recency from
// days since the last event.
func (s *LearningService) dataQuality(scans []models.ScanRecord, logs []models.SymptomLog) models.DataQuality {
	times := make([]time.Time, 0, len(scans)+len(logs))
	var latest time.Time
	for _, rec := range scans {
		times = append(times, rec.ScannedAt)
		if rec.ScannedAt.After(latest) {
			latest = rec.ScannedAt
		}
	}
	for _, log := range logs {
		times = append(times, log.LoggedAt)
		if log.LoggedAt.After(latest) {
			latest = log.LoggedAt
		}
	}

	recency := 0.0
	if !latest.IsZero() {
		days := s.now().Sub(latest).Hours() / 24
		// Caller-supplied timestamps may sit in the future; keep the score
		// inside 0..1 either way.
		recency = math.Max(0, math.Min(1, 1-days/30))
	}

	return models.DataQuality{
		Completeness: math.Min(1, float64(len(scans)+len(logs))/100),
		Consistency:  IntervalConsistency(times),
		Recency:      recency,
	}
}

// feedbackMetrics derives accuracy metrics from the ratio of accurate to
// total feedback-labeled scans, defaulting to the neutral prior.
func feedbackMetrics(scans []models.ScanRecord) models.LearningMetrics {
	accurate, labeled := 0, 0
	for _, rec := range scans {
		switch rec.Feedback {
		case models.FeedbackAccurate:
			accurate++
			labeled++
		case models.FeedbackInaccurate:
			labeled++
		}
	}

	ratio := neutralPrior
	if labeled > 0 {
		ratio = float64(accurate) / float64(labeled)
	}
	return models.LearningMetrics{
		LearningAccuracy:   ratio,
		PredictionAccuracy: ratio,
		UserSatisfaction:   ratio,
	}
}

func overallConfidence(patterns []models.PatternInsight) float64 {
	if len(patterns) == 0 {
		return neutralPrior
	}
	sum := 0.0
	for _, p := range patterns {
		sum += p.Confidence
	}
	return sum / float64(len(patterns))
}
