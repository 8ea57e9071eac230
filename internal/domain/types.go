// Package domain defines the core types for the metabolic health engine.
package domain

import (
	"fmt"
	"time"
)

// DateKey is a calendar date in YYYY-MM-DD form. All engine arithmetic works
// on calendar dates; DateKey values are parsed in UTC only to derive the
// weekday and adjacent days, so results do not depend on the host timezone.
type DateKey string

// Time parses the key as midnight UTC.
func (d DateKey) Time() (time.Time, error) {
	t, err := time.Parse("2006-01-02", string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", d, err)
	}
	return t, nil
}

// AddDays returns the key shifted by n calendar days.
func (d DateKey) AddDays(n int) DateKey {
	t, err := d.Time()
	if err != nil {
		return d
	}
	return DateKey(t.AddDate(0, 0, n).Format("2006-01-02"))
}

// Weekday returns the day of week, or Sunday if the key is malformed.
func (d DateKey) Weekday() time.Weekday {
	t, err := d.Time()
	if err != nil {
		return time.Sunday
	}
	return t.Weekday()
}

// MealItem references a food in the food index by ref, with the eaten amount.
type MealItem struct {
	FoodRef string  `json:"food_ref"`
	Grams   float64 `json:"grams"`
}

// Meal is one eating occasion. Time is a clock time within the day ("HH:MM").
type Meal struct {
	Time  string     `json:"time"`
	Items []MealItem `json:"items"`
}

// TrainingSession records time spent in one heart-rate zone.
type TrainingSession struct {
	Zone        int `json:"zone"`
	DurationMin int `json:"duration_min"`
}

// DayRecord is one calendar day of raw logging data. Produced by the logging
// client; the engine never mutates it.
type DayRecord struct {
	Date            DateKey           `json:"date"`
	Meals           []Meal            `json:"meals"`
	SleepHours      float64           `json:"sleep_hours"`
	MorningWeightKg float64           `json:"morning_weight_kg"`
	Steps           int               `json:"steps"`
	HouseholdMin    int               `json:"household_min"`
	Trainings       []TrainingSession `json:"trainings"`
	StressSamples   []float64         `json:"stress_samples"`
	MoodSamples     []float64         `json:"mood_samples"`
	WaterMl         int               `json:"water_ml"`
	DeficitPct      *float64          `json:"deficit_pct,omitempty"`
	CaloricDebt     *float64          `json:"caloric_debt,omitempty"`
	IsRefeedDay     bool              `json:"is_refeed_day"`
}

// StressAvg averages the day's stress samples on the 0-10 scale.
// Returns 0 when nothing was logged.
func (r *DayRecord) StressAvg() float64 {
	if len(r.StressSamples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range r.StressSamples {
		sum += s
	}
	return sum / float64(len(r.StressSamples))
}

// GoalMode selects the calorie strategy.
type GoalMode string

const (
	GoalBulk        GoalMode = "bulk"
	GoalDeficit     GoalMode = "deficit"
	GoalMaintenance GoalMode = "maintenance"
)

// Goal is the user's calorie goal with a target range.
type Goal struct {
	Mode          GoalMode `json:"mode"`
	TargetKcalMin float64  `json:"target_kcal_min"`
	TargetKcalMax float64  `json:"target_kcal_max"`
}

// MacroTargets are target percentages of calories per macro.
type MacroTargets struct {
	ProteinPct float64 `json:"protein_pct"`
	CarbsPct   float64 `json:"carbs_pct"`
	FatPct     float64 `json:"fat_pct"`
}

// Profile holds per-user settings. Mutated by the settings client; read-only
// to the engine.
type Profile struct {
	WeightKg         float64      `json:"weight_kg"`
	TargetSleepHours float64      `json:"target_sleep_hours"`
	StepGoal         int          `json:"step_goal"`
	MacroTargets     MacroTargets `json:"macro_targets"`
	Goal             *Goal        `json:"goal,omitempty"`
	InsulinWaveHours float64      `json:"insulin_wave_hours,omitempty"`
}

// TargetKcal returns the midpoint of the goal calorie range, or the
// maintenance fallback of 2000 kcal when no goal range is configured.
func (p *Profile) TargetKcal() float64 {
	if p != nil && p.Goal != nil && p.Goal.TargetKcalMin > 0 && p.Goal.TargetKcalMax > 0 {
		return (p.Goal.TargetKcalMin + p.Goal.TargetKcalMax) / 2
	}
	return 2000
}

// SleepTarget returns the configured sleep norm, defaulting to 8 hours.
func (p *Profile) SleepTarget() float64 {
	if p != nil && p.TargetSleepHours > 0 {
		return p.TargetSleepHours
	}
	return 8
}

// FoodFacts are per-100g macro values resolved from the food index.
type FoodFacts struct {
	Kcal100    float64 `json:"kcal_100"`
	Protein100 float64 `json:"protein_100"`
	Carbs100   float64 `json:"carbs_100"`
	Fat100     float64 `json:"fat_100"`
	Fiber100   float64 `json:"fiber_100"`
}

// DayTotals are summed intake values for one day.
type DayTotals struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
	Fiber   float64 `json:"fiber"`
}

// HistoryEntry is the enriched view of one logged day, produced only for
// days that contain meals.
type HistoryEntry struct {
	Date           DateKey      `json:"date"`
	Totals         DayTotals    `json:"totals"`
	ProteinPct     float64      `json:"protein_pct"`
	CarbsPct       float64      `json:"carbs_pct"`
	FatPct         float64      `json:"fat_pct"`
	AdherenceRatio float64      `json:"adherence_ratio"`
	Weekday        time.Weekday `json:"weekday"`
	SleepHours     float64      `json:"sleep_hours"`
	StressAvg      float64      `json:"stress_avg"`
}

// Pillar tags group adherence reasons for the downstream advice engine.
const (
	PillarNutrition = "nutrition"
	PillarSleep     = "sleep"
	PillarActivity  = "activity"
	PillarRecovery  = "recovery"
)

// Reason is one itemized adherence penalty (or exemption, with Impact 0).
type Reason struct {
	ID              string `json:"id"`
	Pillar          string `json:"pillar"`
	Impact          int    `json:"impact"`
	Label           string `json:"label"`
	Details         string `json:"details"`
	ScientificBasis string `json:"scientific_basis"`
}

// AdherenceDetails are the raw numbers behind the score, kept for audit.
type AdherenceDetails struct {
	Kcal         float64 `json:"kcal"`
	KcalTarget   float64 `json:"kcal_target"`
	CalorieRatio float64 `json:"calorie_ratio"`
	Protein      float64 `json:"protein"`
	ProteinMin   float64 `json:"protein_min"`
	Fiber        float64 `json:"fiber"`
	FiberMin     float64 `json:"fiber_min"`
	SleepHours   float64 `json:"sleep_hours"`
	SleepTarget  float64 `json:"sleep_target"`
	Steps        int     `json:"steps"`
}

// AdherenceResult is the outcome of scoring one day against the plan.
// Invariant: Score == clamp(100 - sum of impacts, 0, 100).
type AdherenceResult struct {
	Score   int              `json:"score"`
	Reasons []Reason         `json:"reasons"`
	Details AdherenceDetails `json:"details"`
}

// RiskLevel is the hysteresis-filtered crash risk band.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskFactor is one additive contribution to crash risk.
type RiskFactor struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Impact int    `json:"impact"`
}

// CrashRiskResult is the same-day overeating risk estimate.
type CrashRiskResult struct {
	Risk    int          `json:"risk"`
	Level   RiskLevel    `json:"level"`
	Factors []RiskFactor `json:"factors"`
}

// PreventionStrategy is one ranked mitigation in a risk forecast.
// Priority 0 is the urgent awareness message.
type PreventionStrategy struct {
	Priority int    `json:"priority"`
	Action   string `json:"action"`
}

// RiskForecast is the 24-48h predictive crash risk variant.
type RiskForecast struct {
	Risk           int                  `json:"risk"`
	Factors        []RiskFactor         `json:"factors"`
	PrimaryTrigger *RiskFactor          `json:"primary_trigger,omitempty"`
	Strategies     []PreventionStrategy `json:"strategies"`
}

// MetabolicPhase classifies the moment relative to the last meal.
type MetabolicPhase string

const (
	PhaseAnabolic     MetabolicPhase = "anabolic"
	PhaseTransitional MetabolicPhase = "transitional"
	PhaseCatabolic    MetabolicPhase = "catabolic"
	PhaseUnknown      MetabolicPhase = "unknown"
)

// PhaseResult carries the phase plus timing within it.
type PhaseResult struct {
	Phase        MetabolicPhase `json:"phase"`
	HoursInPhase float64        `json:"hours_in_phase"`
	HoursToNext  float64        `json:"hours_to_next"`
}

// Confidence grades a status by input completeness.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// UnavailableReason is the machine-readable reason on an unavailable result.
type UnavailableReason string

const (
	ReasonFeatureDisabled  UnavailableReason = "feature_disabled"
	ReasonInsufficientData UnavailableReason = "insufficient_data"
	ReasonInternalError    UnavailableReason = "internal_error"
)

// NextStep is one ranked recommendation derived from reasons and risk factors.
type NextStep struct {
	Rank     int    `json:"rank"`
	Action   string `json:"action"`
	SourceID string `json:"source_id"`
}

// StatusDebug is the audit sub-object attached to a StatusResult.
type StatusDebug struct {
	PrevSmoothed *float64 `json:"prev_smoothed,omitempty"`
	EMAValue     float64  `json:"ema_value"`
	RateLimited  bool     `json:"rate_limited"`
	CacheHit     bool     `json:"cache_hit"`
	HistoryDays  int      `json:"history_days"`
}

// StatusResult is the orchestrator's sole output.
type StatusResult struct {
	Available    bool              `json:"available"`
	Reason       UnavailableReason `json:"reason,omitempty"`
	DaysRequired int               `json:"days_required,omitempty"`
	DaysAvailable int              `json:"days_available,omitempty"`

	Date         DateKey        `json:"date,omitempty"`
	Score        int            `json:"score"`
	RawScore     int            `json:"raw_score"`
	Reasons      []Reason       `json:"reasons,omitempty"`
	NextSteps    []NextStep     `json:"next_steps,omitempty"`
	Risk         int            `json:"risk"`
	RiskLevel    RiskLevel      `json:"risk_level,omitempty"`
	Forecast     *RiskForecast  `json:"forecast,omitempty"`
	Phase        PhaseResult    `json:"phase"`
	Confidence   Confidence     `json:"confidence,omitempty"`
	Completeness int            `json:"completeness"`
	Debug        *StatusDebug   `json:"debug,omitempty"`
}

// Unavailable builds an unavailable StatusResult with a reason code.
func Unavailable(reason UnavailableReason) *StatusResult {
	return &StatusResult{Available: false, Reason: reason}
}

// Phenotype labels the inferred macro-tolerance profile.
type Phenotype string

const (
	PhenotypeCarbPreferring   Phenotype = "carb_preferring"
	PhenotypeFatPreferring    Phenotype = "fat_preferring"
	PhenotypeProteinEfficient Phenotype = "protein_efficient"
	PhenotypeBalanced         Phenotype = "balanced"
)

// StressResponse labels how adherence reacts to stress.
type StressResponse string

const (
	StressEater       StressResponse = "stress_eater"
	StressSuppressed  StressResponse = "suppressed_appetite"
	StressResilient   StressResponse = "resilient"
)

// PhenotypeResult is the macro-tolerance classification. Below the 30-day
// sample minimum only Available, DaysRequired, and DaysAvailable are set.
type PhenotypeResult struct {
	Available     bool           `json:"available"`
	DaysRequired  int            `json:"days_required"`
	DaysAvailable int            `json:"days_available"`

	Phenotype         Phenotype      `json:"phenotype,omitempty"`
	CarbScore         int            `json:"carb_score"`
	FatScore          int            `json:"fat_score"`
	ProteinScore      int            `json:"protein_score"`
	StressResponse    StressResponse `json:"stress_response,omitempty"`
	CircadianStrength int            `json:"circadian_strength"`
}

// PersonalThresholds are per-user bands derived from adherence history.
// Below the 14-day sample minimum only the availability fields are set.
type PersonalThresholds struct {
	Available     bool `json:"available"`
	DaysRequired  int  `json:"days_required"`
	DaysAvailable int  `json:"days_available"`

	StreakLow      float64 `json:"streak_low"`
	StreakHigh     float64 `json:"streak_high"`
	CrashThreshold float64 `json:"crash_threshold"`
	DeficitComfort float64 `json:"deficit_comfort"`
}

// Inventory is the feature-presence vector for one day plus the weighted
// completeness percentage.
type Inventory struct {
	HasMeals           bool `json:"has_meals"`
	HasSleep           bool `json:"has_sleep"`
	HasWeight          bool `json:"has_weight"`
	HasWater           bool `json:"has_water"`
	HasSteps           bool `json:"has_steps"`
	HasTrainings       bool `json:"has_trainings"`
	HasStress          bool `json:"has_stress"`
	HasMood            bool `json:"has_mood"`
	HasDeficitOverride bool `json:"has_deficit_override"`
	HasCaloricDebt     bool `json:"has_caloric_debt"`
	HasRefeedFlag      bool `json:"has_refeed_flag"`
	HasProfile         bool `json:"has_profile"`
	HasGoal            bool `json:"has_goal"`

	Completeness int `json:"completeness"`
}
