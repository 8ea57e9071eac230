// Package inventory inspects one day's raw record and profile and reports
// which features are present plus a weighted completeness percentage.
package inventory

import (
	"math"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// Completeness weights. Meals dominate because every downstream scorer
// depends on intake totals.
const (
	weightMeals     = 30
	weightSleep     = 15
	weightProfile   = 15
	weightSteps     = 10
	weightWeight    = 10
	weightTrainings = 5
	weightStress    = 5
	weightMood      = 5
	weightWater     = 5
)

// Take builds the presence vector and completeness percentage for one day.
// Pure function of its inputs.
func Take(rec *domain.DayRecord, prof *domain.Profile) domain.Inventory {
	var inv domain.Inventory

	if rec != nil {
		inv.HasMeals = len(rec.Meals) > 0
		inv.HasSleep = rec.SleepHours > 0
		inv.HasWeight = rec.MorningWeightKg > 0
		inv.HasWater = rec.WaterMl > 0
		inv.HasSteps = rec.Steps > 0
		inv.HasTrainings = len(rec.Trainings) > 0
		inv.HasStress = len(rec.StressSamples) > 0
		inv.HasMood = len(rec.MoodSamples) > 0
		inv.HasDeficitOverride = rec.DeficitPct != nil
		inv.HasCaloricDebt = rec.CaloricDebt != nil
		inv.HasRefeedFlag = rec.IsRefeedDay
	}
	if prof != nil {
		inv.HasProfile = true
		inv.HasGoal = prof.Goal != nil
	}

	inv.Completeness = completeness(inv)
	return inv
}

func completeness(inv domain.Inventory) int {
	type weighted struct {
		present bool
		weight  int
	}
	items := []weighted{
		{inv.HasMeals, weightMeals},
		{inv.HasSleep, weightSleep},
		{inv.HasProfile, weightProfile},
		{inv.HasSteps, weightSteps},
		{inv.HasWeight, weightWeight},
		{inv.HasTrainings, weightTrainings},
		{inv.HasStress, weightStress},
		{inv.HasMood, weightMood},
		{inv.HasWater, weightWater},
	}

	var earned, possible int
	for _, it := range items {
		possible += it.weight
		if it.present {
			earned += it.weight
		}
	}
	return int(math.Round(float64(earned) / float64(possible) * 100))
}
