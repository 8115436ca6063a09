// Package calculator turns raw activity data into kilograms of CO2eq.
//
// The formulas return full precision and never fail: a record without a
// resolvable factor yields 0. Rounding to two decimals happens only when a
// result is written back onto a record for storage.
package calculator

import (
	"github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	factordomain "github.com/sandistd/carbon-footprint-app/internal/factor/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	"github.com/sandistd/carbon-footprint-app/pkg/units"
)

// Policy holds the tunable rules of the energy formula.
type Policy struct {
	// ClampNegativeNetActivity floors activity minus REC at zero. When
	// false, certificates exceeding consumption produce a negative result.
	ClampNegativeNetActivity bool
}

// Direct computes activity * factor for owned combustion sources.
func Direct(activity float64, factor *factordomain.EmissionFactor) float64 {
	if factor == nil {
		return 0
	}
	return activity * factor.Factor
}

// PurchasedEnergy computes (activity - rec) * factor.
func PurchasedEnergy(activity, rec float64, factor *factordomain.EmissionFactor, policy Policy) float64 {
	if factor == nil {
		return 0
	}
	net := activity - rec
	if policy.ClampNegativeNetActivity && net < 0 {
		net = 0
	}
	return net * factor.Factor
}

// ValueChain computes activity * factor; the category only classifies.
func ValueChain(activity float64, factor *factordomain.EmissionFactor) float64 {
	return Direct(activity, factor)
}

// Calculate dispatches on scope with the default policy. rec is ignored
// outside the energy scope.
func Calculate(s scope.Scope, activity, rec float64, factor *factordomain.EmissionFactor) float64 {
	return CalculateWithPolicy(s, activity, rec, factor, Policy{})
}

func CalculateWithPolicy(s scope.Scope, activity, rec float64, factor *factordomain.EmissionFactor, policy Policy) float64 {
	switch s {
	case scope.Direct:
		return Direct(activity, factor)
	case scope.Energy:
		return PurchasedEnergy(activity, rec, factor, policy)
	case scope.ValueChain:
		return ValueChain(activity, factor)
	default:
		return 0
	}
}

// Recalculate derives the stored emission result of record from its raw
// fields, rounded to two decimals.
func Recalculate(record *domain.Record, factor *factordomain.EmissionFactor, policy Policy) {
	if record == nil {
		return
	}
	kg := CalculateWithPolicy(record.Scope, record.ActivityValue, record.RecValue, factor, policy)
	record.EmissionResult = units.Round2(kg)
}
