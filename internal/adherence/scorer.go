// Package adherence scores one day's intake against the plan, with itemized
// penalty reasons for the downstream advice engine.
package adherence

import (
	"context"
	"fmt"

	"github.com/heys-app/metabolic-engine/internal/domain"
	"github.com/heys-app/metabolic-engine/internal/history"
)

// Penalty magnitudes per rule.
const (
	penaltySevereUnder   = 30
	penaltyOvereat       = 25
	penaltyMildMiss      = 15
	penaltyProteinSevere = 25
	penaltyProteinLow    = 15
	penaltyFiberLow      = 10
	penaltySleepSevere   = 20
	penaltySleepMild     = 10
	penaltySedentary     = 10
)

// Nutrient minimum coefficients.
const (
	proteinGramsPerKg  = 0.8
	fiberGramsPer1000  = 14
	sedentaryStepFloor = 8000
)

// Scorer computes plan adherence for one day.
type Scorer struct {
	Index domain.FoodIndex
}

// Score evaluates the day against targets. Starts at 100 and subtracts the
// triggered penalties; the result is clamped to [0,100].
func (s *Scorer) Score(ctx context.Context, rec *domain.DayRecord, prof *domain.Profile) (*domain.AdherenceResult, error) {
	totals, err := history.MealTotals(ctx, s.Index, rec.Meals)
	if err != nil {
		return nil, err
	}

	target := prof.TargetKcal()
	ratio := 0.0
	if target > 0 {
		ratio = totals.Kcal / target
	}

	weight := prof.WeightKg
	if rec.MorningWeightKg > 0 {
		weight = rec.MorningWeightKg
	}
	proteinMin := weight * proteinGramsPerKg
	fiberMin := totals.Kcal / 1000 * fiberGramsPer1000
	sleepTarget := prof.SleepTarget()

	var reasons []domain.Reason

	reasons = append(reasons, calorieReasons(rec, ratio)...)
	reasons = append(reasons, proteinReasons(totals.Protein, proteinMin)...)
	reasons = append(reasons, fiberReasons(totals.Fiber, fiberMin)...)
	reasons = append(reasons, sleepReasons(rec.SleepHours, sleepTarget)...)
	reasons = append(reasons, activityReasons(rec)...)

	score := 100
	for _, r := range reasons {
		score -= r.Impact
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &domain.AdherenceResult{
		Score:   score,
		Reasons: reasons,
		Details: domain.AdherenceDetails{
			Kcal:         totals.Kcal,
			KcalTarget:   target,
			CalorieRatio: ratio,
			Protein:      totals.Protein,
			ProteinMin:   proteinMin,
			Fiber:        totals.Fiber,
			FiberMin:     fiberMin,
			SleepHours:   rec.SleepHours,
			SleepTarget:  sleepTarget,
			Steps:        rec.Steps,
		},
	}, nil
}

func calorieReasons(rec *domain.DayRecord, ratio float64) []domain.Reason {
	if rec.IsRefeedDay && ratio >= 0.9 && ratio <= 1.3 {
		return []domain.Reason{{
			ID:              "refeed_day",
			Pillar:          domain.PillarNutrition,
			Impact:          0,
			Label:           "Planned refeed day",
			Details:         fmt.Sprintf("intake at %.0f%% of target, exempt from overage penalty", ratio*100),
			ScientificBasis: "Periodic refeeds during an extended deficit restore leptin and glycogen without compromising fat loss.",
		}}
	}

	var impact int
	var id, label string
	switch {
	case ratio < 0.75:
		impact, id, label = penaltySevereUnder, "severe_undereating", "Severe calorie shortfall"
	case ratio > 1.3:
		impact, id, label = penaltyOvereat, "overeating", "Calorie intake well above target"
	case ratio < 0.85 || ratio > 1.15:
		impact, id, label = penaltyMildMiss, "calorie_drift", "Calorie intake off target"
	default:
		return nil
	}

	return []domain.Reason{{
		ID:              id,
		Pillar:          domain.PillarNutrition,
		Impact:          impact,
		Label:           label,
		Details:         fmt.Sprintf("intake at %.0f%% of target", ratio*100),
		ScientificBasis: "Sustained deviation from the planned energy balance slows adaptation and raises rebound risk.",
	}}
}

func proteinReasons(protein, proteinMin float64) []domain.Reason {
	if proteinMin <= 0 || protein >= proteinMin {
		return nil
	}

	impact := penaltyProteinLow
	id, label := "protein_low", "Protein below minimum"
	if protein < proteinMin*0.5 {
		impact = penaltyProteinSevere
		id, label = "protein_critical", "Protein far below minimum"
	}
	return []domain.Reason{{
		ID:              id,
		Pillar:          domain.PillarNutrition,
		Impact:          impact,
		Label:           label,
		Details:         fmt.Sprintf("%.0fg eaten of %.0fg minimum", protein, proteinMin),
		ScientificBasis: "Intake below 0.8 g/kg accelerates lean mass loss, especially in a calorie deficit.",
	}}
}

func fiberReasons(fiber, fiberMin float64) []domain.Reason {
	if fiberMin <= 0 || fiber >= fiberMin {
		return nil
	}
	return []domain.Reason{{
		ID:              "fiber_low",
		Pillar:          domain.PillarNutrition,
		Impact:          penaltyFiberLow,
		Label:           "Fiber below minimum",
		Details:         fmt.Sprintf("%.0fg eaten of %.0fg minimum", fiber, fiberMin),
		ScientificBasis: "14 g of fiber per 1000 kcal supports satiety and glycemic control.",
	}}
}

func sleepReasons(sleep, target float64) []domain.Reason {
	if sleep <= 0 {
		// Unlogged sleep is a completeness problem, not a penalty.
		return nil
	}
	deficit := target - sleep

	var impact int
	switch {
	case deficit >= 2:
		impact = penaltySleepSevere
	case deficit >= 1:
		impact = penaltySleepMild
	default:
		return nil
	}
	return []domain.Reason{{
		ID:              "sleep_deficit",
		Pillar:          domain.PillarSleep,
		Impact:          impact,
		Label:           "Sleep below target",
		Details:         fmt.Sprintf("%.1fh slept of %.1fh target", sleep, target),
		ScientificBasis: "Short sleep elevates ghrelin and next-day energy intake.",
	}}
}

func activityReasons(rec *domain.DayRecord) []domain.Reason {
	if rec.Steps >= sedentaryStepFloor || len(rec.Trainings) > 0 {
		return nil
	}
	return []domain.Reason{{
		ID:              "sedentary_day",
		Pillar:          domain.PillarActivity,
		Impact:          penaltySedentary,
		Label:           "Low daily activity",
		Details:         fmt.Sprintf("%d steps and no training logged", rec.Steps),
		ScientificBasis: "Non-exercise activity is the largest modifiable component of daily energy expenditure.",
	}}
}
