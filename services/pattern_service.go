package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"backend/models"
)

// historyWindow caps how many records pattern mining will look at, bounding
// worst-case cost on long-lived accounts.
const historyWindow = 500

// Emission gates for the four pattern families.
const (
	foodTriggerMinOccurrences = 3
	foodTriggerMinFrequency   = 0.1
	foodTriggerMinSeverity    = 5.0
	symptomMinOccurrences     = 5
	symptomMinFrequency       = 0.2
	correlationMinRate        = 0.3
	timingMinBucketSize       = 3
	correlationWindow         = 24 * time.Hour
)

// symptomConditionMap is the fixed symptom-type → condition table used by
// condition-correlation mining and severity recommendations.
var symptomConditionMap = map[string]models.Condition{
	"bloating":       models.ConditionFodmap,
	"gas":            models.ConditionFodmap,
	"abdominal pain": models.ConditionFodmap,
	"heartburn":      models.ConditionReflux,
	"reflux":         models.ConditionReflux,
	"regurgitation":  models.ConditionReflux,
	"diarrhea":       models.ConditionLactose,
	"cramping":       models.ConditionLactose,
	"fatigue":        models.ConditionGluten,
	"brain fog":      models.ConditionGluten,
	"joint pain":     models.ConditionGluten,
	"headache":       models.ConditionHistamine,
	"flushing":       models.ConditionHistamine,
	"congestion":     models.ConditionHistamine,
	"hives":          models.ConditionAllergies,
	"itching":        models.ConditionAllergies,
	"swelling":       models.ConditionAllergies,
	"nausea":         models.ConditionAdditives,
}

// PatternAnalyzer mines scan and symptom history for recurring patterns.
// Every family is a deterministic closed-form heuristic over counts and
// interval variance; nothing here is a trained model.
type PatternAnalyzer struct {
	rules *TriggerRuleSet
}

func NewPatternAnalyzer(rules *TriggerRuleSet) *PatternAnalyzer {
	return &PatternAnalyzer{rules: rules}
}

// Analyze runs all four pattern families independently and returns the
// concatenated insights sorted by confidence descending. Empty history
// yields an empty list, not an error.
func (a *PatternAnalyzer) Analyze(
	scans []models.ScanRecord,
	logs []models.SymptomLog,
	profile *models.GutProfile,
) []models.PatternInsight {
	if len(scans) > historyWindow {
		scans = scans[:historyWindow]
	}
	if len(logs) > historyWindow {
		logs = logs[:historyWindow]
	}

	insights := a.foodTriggerPatterns(scans, logs, profile)
	insights = append(insights, a.symptomPatterns(logs)...)
	insights = append(insights, a.conditionCorrelations(logs, profile)...)
	insights = append(insights, a.timingPatterns(logs)...)

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Confidence > insights[j].Confidence
	})
	return insights
}

type triggerStats struct {
	occurrences       int
	scanTimes         []time.Time
	symptomSeverities []int
}

func (a *PatternAnalyzer) foodTriggerPatterns(
	scans []models.ScanRecord,
	logs []models.SymptomLog,
	profile *models.GutProfile,
) []models.PatternInsight {
	if len(scans) == 0 {
		return nil
	}

	stats := make(map[string]*triggerStats)
	for _, rec := range scans {
		if rec.Analysis.OverallSafety == models.SafetySafe || rec.Feedback == models.FeedbackInaccurate {
			continue
		}
		seen := make(map[string]struct{})
		for _, ing := range rec.Food.Ingredients {
			key := strings.ToLower(strings.TrimSpace(ing))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			st := stats[key]
			if st == nil {
				st = &triggerStats{}
				stats[key] = st
			}
			st.occurrences++
			st.scanTimes = append(st.scanTimes, rec.ScannedAt)

			for _, log := range logs {
				delta := log.LoggedAt.Sub(rec.ScannedAt)
				if delta < 0 || delta > correlationWindow {
					continue
				}
				if !mentionsIngredient(log.FoodItems, key) {
					continue
				}
				for _, sym := range log.Symptoms {
					st.symptomSeverities = append(st.symptomSeverities, sym.Severity)
				}
			}
		}
	}

	var out []models.PatternInsight
	for ingredient, st := range stats {
		if st.occurrences < foodTriggerMinOccurrences || len(st.symptomSeverities) == 0 {
			continue
		}
		frequency := float64(st.occurrences) / float64(len(scans))
		avgSeverity := meanInt(st.symptomSeverities)
		if frequency <= foodTriggerMinFrequency || avgSeverity <= foodTriggerMinSeverity {
			continue
		}
		consistency := IntervalConsistency(st.scanTimes)
		confidence := math.Min(0.9, frequency*(avgSeverity/10)*consistency)

		out = append(out, models.PatternInsight{
			Type:       models.PatternFoodTrigger,
			Target:     ingredient,
			Confidence: confidence,
			Description: fmt.Sprintf(
				"%q appears in %d of your flagged scans and is followed by symptoms within 24 hours (average severity %.1f/10)",
				ingredient, st.occurrences, avgSeverity),
			Evidence: models.Evidence{
				Frequency:    math.Min(1, frequency),
				Severity:     avgSeverity,
				Consistency:  consistency,
				DataPoints:   st.occurrences,
				TimeSpanDays: spanDays(st.scanTimes),
			},
			Recommendations: []string{
				fmt.Sprintf("Consider adding %q to your known triggers", ingredient),
			},
			AffectedConditions: a.conditionsFor(ingredient, profile),
		})
	}
	sortByTarget(out)
	return out
}

type symptomStats struct {
	occurrences int
	times       []time.Time
	severities  []int
}

func (a *PatternAnalyzer) symptomPatterns(logs []models.SymptomLog) []models.PatternInsight {
	if len(logs) == 0 {
		return nil
	}

	stats := make(map[string]*symptomStats)
	for _, log := range logs {
		// A type repeated inside one log still counts as a single episode,
		// so frequency stays a per-log rate.
		seen := make(map[string]struct{})
		for _, sym := range log.Symptoms {
			key := strings.ToLower(strings.TrimSpace(sym.Type))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			st := stats[key]
			if st == nil {
				st = &symptomStats{}
				stats[key] = st
			}
			st.occurrences++
			st.severities = append(st.severities, sym.Severity)
			ts := sym.Timestamp
			if ts.IsZero() {
				ts = log.LoggedAt
			}
			st.times = append(st.times, ts)
		}
	}

	var out []models.PatternInsight
	for symType, st := range stats {
		if st.occurrences < symptomMinOccurrences {
			continue
		}
		frequency := float64(st.occurrences) / float64(len(logs))
		if frequency <= symptomMinFrequency {
			continue
		}
		consistency := IntervalConsistency(st.times)
		confidence := math.Min(0.9, math.Min(1, frequency)*consistency)

		insight := models.PatternInsight{
			Type:       models.PatternSymptom,
			Target:     symType,
			Confidence: confidence,
			Description: fmt.Sprintf(
				"%q shows up in %d of your %d symptom logs",
				symType, st.occurrences, len(logs)),
			Evidence: models.Evidence{
				Frequency:    math.Min(1, frequency),
				Severity:     meanInt(st.severities),
				Consistency:  consistency,
				DataPoints:   st.occurrences,
				TimeSpanDays: spanDays(st.times),
			},
			Recommendations: []string{
				fmt.Sprintf("Track foods eaten before %q episodes to narrow the cause", symType),
			},
		}
		if cond, ok := symptomConditionMap[symType]; ok {
			insight.AffectedConditions = []models.Condition{cond}
		}
		out = append(out, insight)
	}
	sortByTarget(out)
	return out
}

func (a *PatternAnalyzer) conditionCorrelations(
	logs []models.SymptomLog,
	profile *models.GutProfile,
) []models.PatternInsight {
	if len(logs) == 0 {
		return nil
	}

	var out []models.PatternInsight
	for _, cond := range profile.EnabledConditions() {
		count := 0
		var times []time.Time
		var severities []int
		for _, log := range logs {
			matched := false
			for _, sym := range log.Symptoms {
				if symptomConditionMap[strings.ToLower(strings.TrimSpace(sym.Type))] == cond {
					matched = true
					severities = append(severities, sym.Severity)
				}
			}
			if matched {
				count++
				times = append(times, log.LoggedAt)
			}
		}

		rate := float64(count) / float64(len(logs))
		if rate <= correlationMinRate {
			continue
		}
		out = append(out, models.PatternInsight{
			Type:       models.PatternConditionCorrelation,
			Target:     string(cond),
			Confidence: math.Min(0.9, rate),
			Description: fmt.Sprintf(
				"%.0f%% of your symptom logs match symptoms typical of %s",
				rate*100, cond),
			Evidence: models.Evidence{
				Frequency:    rate,
				Severity:     meanInt(severities),
				Consistency:  IntervalConsistency(times),
				DataPoints:   count,
				TimeSpanDays: spanDays(times),
			},
			Recommendations: []string{
				fmt.Sprintf("Your %s settings look active in your recent history; review its trigger list", cond),
			},
			AffectedConditions: []models.Condition{cond},
		})
	}
	return out
}

func (a *PatternAnalyzer) timingPatterns(logs []models.SymptomLog) []models.PatternInsight {
	type bucketKey struct {
		day  time.Weekday
		hour int
	}
	type bucket struct {
		count      int
		severities []int
	}

	buckets := make(map[bucketKey]*bucket)
	for _, log := range logs {
		key := bucketKey{day: log.LoggedAt.Weekday(), hour: log.LoggedAt.Hour()}
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.count++
		for _, sym := range log.Symptoms {
			b.severities = append(b.severities, sym.Severity)
		}
	}

	var bestKey bucketKey
	var best *bucket
	bestMean := -1.0
	for key, b := range buckets {
		if b.count < timingMinBucketSize {
			continue
		}
		mean := meanInt(b.severities)
		// Deterministic tie-break so repeated runs emit the same insight.
		if mean > bestMean || (mean == bestMean && earlierBucket(key.day, key.hour, bestKey.day, bestKey.hour)) {
			bestMean = mean
			bestKey = key
			best = b
		}
	}
	if best == nil {
		return nil
	}

	return []models.PatternInsight{{
		Type:       models.PatternTiming,
		Target:     fmt.Sprintf("%s %02d:00", bestKey.day, bestKey.hour),
		Confidence: math.Min(0.8, float64(best.count)/10),
		Description: fmt.Sprintf(
			"Symptoms cluster on %s around %02d:00 (%d episodes, average severity %.1f/10)",
			bestKey.day, bestKey.hour, best.count, bestMean),
		Evidence: models.Evidence{
			Frequency:   math.Min(1, float64(best.count)/float64(len(logs))),
			Severity:    bestMean,
			Consistency: 1,
			DataPoints:  best.count,
		},
		Recommendations: []string{
			"Note what you eat in the hours before this window",
		},
	}}
}

// conditionsFor reports which enabled conditions flag the ingredient, via
// user triggers first and the generic tables second.
func (a *PatternAnalyzer) conditionsFor(ingredient string, profile *models.GutProfile) []models.Condition {
	triggers := profile.UserTriggers()
	var out []models.Condition
	for _, cond := range profile.EnabledConditions() {
		if _, ok := matchUserTrigger(ingredient, triggers[cond]); ok {
			out = append(out, cond)
			continue
		}
		if a.rules.Evaluate(cond, ingredient).IsProblematic {
			out = append(out, cond)
		}
	}
	return out
}

// IntervalConsistency scores how evenly spaced a series of events is:
// 1 for perfectly regular intervals, approaching 0 as spacing gets erratic.
// Fewer than two timestamps give 0 (no intervals to measure).
func IntervalConsistency(times []time.Time) float64 {
	if len(times) < 2 {
		return 0
	}
	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, sorted[i].Sub(sorted[i-1]).Hours())
	}

	mean := 0.0
	for _, v := range intervals {
		mean += v
	}
	mean /= float64(len(intervals))
	if mean == 0 {
		// All events at the same instant: treat as perfectly regular.
		return 1
	}

	variance := 0.0
	for _, v := range intervals {
		variance += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(variance / float64(len(intervals)))

	return math.Max(0, 1-stddev/mean)
}

func spanDays(times []time.Time) float64 {
	if len(times) < 2 {
		return 0
	}
	min, max := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	return max.Sub(min).Hours() / 24
}

func mentionsIngredient(foods []string, ingredient string) bool {
	for _, f := range foods {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if strings.Contains(f, ingredient) || strings.Contains(ingredient, f) {
			return true
		}
	}
	return false
}

func meanInt(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

func earlierBucket(d1 time.Weekday, h1 int, d2 time.Weekday, h2 int) bool {
	if d1 != d2 {
		return d1 < d2
	}
	return h1 < h2
}

func sortByTarget(insights []models.PatternInsight) {
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Target < insights[j].Target
	})
}
