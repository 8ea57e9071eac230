// Package phenotype infers a macro-tolerance profile and personalized
// thresholds from adherence history. Both refuse to guess below their
// minimum sample sizes.
package phenotype

import (
	"context"
	"math"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// Minimum sample sizes.
const (
	MinDaysPhenotype  = 30
	MinDaysThresholds = 14
)

// High-ratio cutoffs: a day counts as "high" for a macro when that macro's
// share of calories exceeds the cutoff.
const (
	carbHighPct    = 50
	fatHighPct     = 40
	proteinHighPct = 30
)

// Stress partition bounds on the 0-10 scale.
const (
	stressHighFloor = 6
	stressLowCeil   = 3
)

// Classifier infers the phenotype, optionally enriched with a circadian
// strength score.
type Classifier struct {
	Circadian domain.Circadian
}

// NewClassifier wires a classifier with the neutral circadian default.
func NewClassifier(circadian domain.Circadian) *Classifier {
	if circadian == nil {
		circadian = domain.NeutralCircadian{}
	}
	return &Classifier{Circadian: circadian}
}

// Classify infers the macro-tolerance phenotype from at least 30 days of
// history. Below the minimum it returns an explicit insufficient-data result
// rather than a guess.
func (c *Classifier) Classify(ctx context.Context, clientID string, hist []domain.HistoryEntry) *domain.PhenotypeResult {
	if len(hist) < MinDaysPhenotype {
		return &domain.PhenotypeResult{
			Available:     false,
			DaysRequired:  MinDaysPhenotype,
			DaysAvailable: len(hist),
		}
	}

	carbScore := toleranceScore(hist, func(e domain.HistoryEntry) bool { return e.CarbsPct > carbHighPct })
	fatScore := toleranceScore(hist, func(e domain.HistoryEntry) bool { return e.FatPct > fatHighPct })
	proteinScore := toleranceScore(hist, func(e domain.HistoryEntry) bool { return e.ProteinPct > proteinHighPct })

	var ptype domain.Phenotype
	switch {
	case carbScore > 75 && fatScore < 60:
		ptype = domain.PhenotypeCarbPreferring
	case fatScore > 75 && carbScore < 60:
		ptype = domain.PhenotypeFatPreferring
	case proteinScore > 80:
		ptype = domain.PhenotypeProteinEfficient
	default:
		ptype = domain.PhenotypeBalanced
	}

	circadian, err := c.Circadian.Strength(ctx, clientID, hist)
	if err != nil {
		circadian = 50
	}

	return &domain.PhenotypeResult{
		Available:         true,
		DaysRequired:      MinDaysPhenotype,
		DaysAvailable:     len(hist),
		Phenotype:         ptype,
		CarbScore:         carbScore,
		FatScore:          fatScore,
		ProteinScore:      proteinScore,
		StressResponse:    stressResponse(hist),
		CircadianStrength: circadian,
	}
}

// toleranceScore averages the adherence ratio over days selected by high,
// then maps closeness to 1.0 onto [0,100]. No qualifying days scores 0.
func toleranceScore(hist []domain.HistoryEntry, high func(domain.HistoryEntry) bool) int {
	var sum float64
	var n int
	for _, e := range hist {
		if high(e) {
			sum += e.AdherenceRatio
			n++
		}
	}
	if n == 0 {
		return 0
	}
	avg := sum / float64(n)
	score := math.Round((1 - math.Abs(1-avg)) * 100)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

// stressResponse compares average adherence on high-stress versus low-stress
// days. Without both groups the classification stays resilient.
func stressResponse(hist []domain.HistoryEntry) domain.StressResponse {
	var highSum, lowSum float64
	var highN, lowN int
	for _, e := range hist {
		switch {
		case e.StressAvg >= stressHighFloor:
			highSum += e.AdherenceRatio
			highN++
		case e.StressAvg > 0 && e.StressAvg <= stressLowCeil:
			lowSum += e.AdherenceRatio
			lowN++
		}
	}
	if highN == 0 || lowN == 0 {
		return domain.StressResilient
	}

	diff := highSum/float64(highN) - lowSum/float64(lowN)
	switch {
	case diff > 0.15:
		return domain.StressEater
	case diff < -0.10:
		return domain.StressSuppressed
	default:
		return domain.StressResilient
	}
}
