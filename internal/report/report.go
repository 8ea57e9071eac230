// Package report aggregates daily statuses into week or month trend
// summaries.
package report

import (
	"context"

	"github.com/heys-app/metabolic-engine/internal/domain"
	"github.com/heys-app/metabolic-engine/internal/history"
)

// Trend is the direction of a least-squares slope.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// slopeDeadband separates a real trend from noise.
const slopeDeadband = 0.5

// highRiskFloor counts a day as high-risk in the summary.
const highRiskFloor = 60

// Standard window lengths.
const (
	WeekDays  = 7
	MonthDays = 30
)

// StatusSource recomputes one day's status. Satisfied by status.Engine.
type StatusSource interface {
	ComputeDay(ctx context.Context, clientID string, date domain.DateKey) (*domain.StatusResult, error)
}

// DayEntry is one day inside a summary.
type DayEntry struct {
	Date      domain.DateKey   `json:"date"`
	Available bool             `json:"available"`
	Score     int              `json:"score"`
	Risk      int              `json:"risk"`
	RiskLevel domain.RiskLevel `json:"riskLevel,omitempty"`
}

// Summary is the aggregate over a report window.
type Summary struct {
	ClientID     string         `json:"clientId"`
	From         domain.DateKey `json:"from"`
	To           domain.DateKey `json:"to"`
	Days         int            `json:"days"`
	ScoredDays   int            `json:"scoredDays"`
	AvgScore     float64        `json:"avgScore"`
	AvgRisk      float64        `json:"avgRisk"`
	HighRiskDays int            `json:"highRiskDays"`
	BestDay      domain.DateKey `json:"bestDay,omitempty"`
	BestScore    int            `json:"bestScore"`
	WorstDay     domain.DateKey `json:"worstDay,omitempty"`
	WorstScore   int            `json:"worstScore"`
	ScoreSlope   float64        `json:"scoreSlope"`
	ScoreTrend   Trend          `json:"scoreTrend"`
	RiskSlope    float64        `json:"riskSlope"`
	RiskTrend    Trend          `json:"riskTrend"`
	Daily        []DayEntry     `json:"daily"`
}

// Generator builds summaries by recomputing each day through the source.
type Generator struct {
	Source StatusSource
}

// Generate summarizes the window of the given length ending at end,
// inclusive. Days without enough data appear in Daily but are excluded
// from the averages and trends.
func (g *Generator) Generate(ctx context.Context, clientID string, end domain.DateKey, days int) (*Summary, error) {
	if clientID == "" {
		return nil, domain.ErrClientIDRequired
	}
	if _, err := end.Time(); err != nil {
		return nil, domain.ErrInvalidDate
	}
	if days <= 0 {
		days = WeekDays
	}
	if days > history.MaxWindowDays {
		return nil, domain.ErrWindowTooLarge
	}

	sum := &Summary{
		ClientID: clientID,
		From:     end.AddDays(-(days - 1)),
		To:       end,
		Days:     days,
	}

	var scores, risks []float64
	for i := days - 1; i >= 0; i-- {
		date := end.AddDays(-i)
		res, err := g.Source.ComputeDay(ctx, clientID, date)
		if err != nil {
			return nil, err
		}

		entry := DayEntry{Date: date, Available: res.Available}
		if res.Available {
			entry.Score = res.Score
			entry.Risk = res.Risk
			entry.RiskLevel = res.RiskLevel

			scores = append(scores, float64(res.Score))
			risks = append(risks, float64(res.Risk))
			if res.Risk >= highRiskFloor {
				sum.HighRiskDays++
			}
			if sum.BestDay == "" || res.Score > sum.BestScore {
				sum.BestDay, sum.BestScore = date, res.Score
			}
			if sum.WorstDay == "" || res.Score < sum.WorstScore {
				sum.WorstDay, sum.WorstScore = date, res.Score
			}
		}
		sum.Daily = append(sum.Daily, entry)
	}

	sum.ScoredDays = len(scores)
	sum.AvgScore = mean(scores)
	sum.AvgRisk = mean(risks)
	sum.ScoreSlope = Slope(scores)
	sum.ScoreTrend = Direction(sum.ScoreSlope)
	sum.RiskSlope = Slope(risks)
	sum.RiskTrend = Direction(sum.RiskSlope)
	return sum, nil
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var total float64
	for _, v := range vs {
		total += v
	}
	return total / float64(len(vs))
}

// Slope is the ordinary least-squares slope of values against their index.
func Slope(vs []float64) float64 {
	n := float64(len(vs))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range vs {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// Direction maps a slope to a trend using the deadband.
func Direction(slope float64) Trend {
	switch {
	case slope > slopeDeadband:
		return TrendUp
	case slope < -slopeDeadband:
		return TrendDown
	default:
		return TrendStable
	}
}
