// Package stats implements the supply-chain safety statistics: safety stock,
// reorder point, and economic order quantity. All functions are pure.
package stats

import (
	"math"

	"github.com/andresuchdata/inventory-agent/internal/domain"
)

// MinHistoryPoints is the minimum demand history length Summarize accepts.
const MinHistoryPoints = 3

// ZScore returns the inverse standard-normal CDF value for the given
// service level. At 0.5 the result is exactly 0.
func ZScore(serviceLevel float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*serviceLevel-1)
}

// SafetyStock computes SS = Z(serviceLevel) * stdDev * sqrt(leadTimeDays).
func SafetyStock(stdDev float64, leadTimeDays int, serviceLevel float64) (float64, error) {
	if stdDev < 0 {
		return 0, &domain.ValidationError{Param: "std_dev", Reason: "must be non-negative"}
	}
	if leadTimeDays <= 0 {
		return 0, &domain.ValidationError{Param: "lead_time_days", Reason: "must be positive"}
	}
	if serviceLevel < 0.5 || serviceLevel > 0.99 {
		return 0, &domain.ValidationError{Param: "service_level", Reason: "must be between 0.5 and 0.99"}
	}

	return ZScore(serviceLevel) * stdDev * math.Sqrt(float64(leadTimeDays)), nil
}

// ReorderPoint computes ROP = avgDemand * leadTimeDays + safetyStock.
func ReorderPoint(avgDemand float64, leadTimeDays int, safetyStock float64) (float64, error) {
	if avgDemand < 0 {
		return 0, &domain.ValidationError{Param: "avg_demand", Reason: "must be non-negative"}
	}
	if leadTimeDays <= 0 {
		return 0, &domain.ValidationError{Param: "lead_time_days", Reason: "must be positive"}
	}
	if safetyStock < 0 {
		return 0, &domain.ValidationError{Param: "safety_stock", Reason: "must be non-negative"}
	}

	return avgDemand*float64(leadTimeDays) + safetyStock, nil
}

// EconomicOrderQuantity computes EOQ = sqrt(2 * D * S / H).
// Kept alongside Summarize for direct reuse by future order-quantity
// policies.
func EconomicOrderQuantity(annualDemand, orderCost, holdingCost float64) (float64, error) {
	if annualDemand <= 0 {
		return 0, &domain.ValidationError{Param: "annual_demand", Reason: "must be positive"}
	}
	if orderCost <= 0 {
		return 0, &domain.ValidationError{Param: "order_cost", Reason: "must be positive"}
	}
	if holdingCost <= 0 {
		return 0, &domain.ValidationError{Param: "holding_cost", Reason: "must be positive"}
	}

	return math.Sqrt(2 * annualDemand * orderCost / holdingCost), nil
}

// Summarize processes a demand history and returns the derived metrics.
// Standard deviation uses the sample (n-1) denominator. This is the single
// entry point the decision workflow calls.
func Summarize(demandHistory []float64, leadTimeDays int, serviceLevel float64) (domain.SafetyMetrics, error) {
	if len(demandHistory) < MinHistoryPoints {
		return domain.SafetyMetrics{}, &domain.ValidationError{
			Param:  "demand_history",
			Reason: "must have at least 3 data points",
		}
	}

	avg := mean(demandHistory)
	std := sampleStdDev(demandHistory, avg)

	ss, err := SafetyStock(std, leadTimeDays, serviceLevel)
	if err != nil {
		return domain.SafetyMetrics{}, err
	}

	rop, err := ReorderPoint(avg, leadTimeDays, ss)
	if err != nil {
		return domain.SafetyMetrics{}, err
	}

	return domain.SafetyMetrics{
		AvgDemand:    avg,
		StdDev:       std,
		ZScore:       ZScore(serviceLevel),
		SafetyStock:  ss,
		ReorderPoint: rop,
	}, nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
