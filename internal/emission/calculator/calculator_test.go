package calculator

import (
	"testing"

	"github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	factordomain "github.com/sandistd/carbon-footprint-app/internal/factor/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	"github.com/stretchr/testify/assert"
)

func factorOf(v float64) *factordomain.EmissionFactor {
	return &factordomain.EmissionFactor{Factor: v, Unit: "kg CO2eq/unit"}
}

func TestDirectMatchesProduct(t *testing.T) {
	activities := []float64{0, 1, 12.5, 100, 3333.33, 1e6}
	factors := []float64{0.0001, 0.15, 2.31, 2.68, 9.99}
	for _, a := range activities {
		for _, f := range factors {
			assert.InDelta(t, a*f, Calculate(scope.Direct, a, 0, factorOf(f)), 1e-9)
		}
	}
}

func TestPurchasedEnergyNetOfRec(t *testing.T) {
	f := factorOf(0.78)
	assert.InDelta(t, (1000-200)*0.78, Calculate(scope.Energy, 1000, 200, f), 1e-9)
	assert.InDelta(t, Calculate(scope.Direct, 1000, 0, f), Calculate(scope.Energy, 1000, 0, f), 1e-9)
}

func TestPurchasedEnergyIsNotClampedByDefault(t *testing.T) {
	f := factorOf(0.78)
	got := Calculate(scope.Energy, 100, 300, f)
	assert.InDelta(t, -156.0, got, 1e-9)

	clamped := CalculateWithPolicy(scope.Energy, 100, 300, f, Policy{ClampNegativeNetActivity: true})
	assert.Equal(t, 0.0, clamped)
}

func TestValueChainIgnoresCategory(t *testing.T) {
	f := factorOf(0.15)
	assert.InDelta(t, 150.0, ValueChain(1000, f), 1e-9)
	assert.Equal(t, Calculate(scope.Direct, 1000, 0, f), Calculate(scope.ValueChain, 1000, 0, f))
}

func TestMissingFactorYieldsZero(t *testing.T) {
	for _, s := range scope.All {
		assert.Equal(t, 0.0, Calculate(s, 500, 10, nil))
	}
	assert.Equal(t, 0.0, Calculate(scope.Scope("scope_9"), 500, 0, factorOf(2)))
}

func TestCalculateIsIdempotent(t *testing.T) {
	f := factorOf(2.68)
	first := Calculate(scope.Direct, 123.45, 0, f)
	second := Calculate(scope.Direct, 123.45, 0, f)
	assert.Equal(t, first, second)
}

func TestRecalculateRoundsForStorage(t *testing.T) {
	direct := &domain.Record{Scope: scope.Direct, ActivityValue: 100}
	Recalculate(direct, &factordomain.EmissionFactor{Factor: 2.68, Unit: "kg CO2eq/Liter"}, Policy{})
	assert.Equal(t, 268.00, direct.EmissionResult)

	energy := &domain.Record{Scope: scope.Energy, ActivityValue: 1000, RecValue: 200}
	Recalculate(energy, factorOf(0.78), Policy{})
	assert.Equal(t, 624.00, energy.EmissionResult)

	travel := &domain.Record{Scope: scope.ValueChain, ActivityValue: 12.34, Category: domain.CategoryBusinessTravel}
	Recalculate(travel, factorOf(1.5), Policy{})
	assert.Equal(t, 18.51, travel.EmissionResult)

	Recalculate(travel, factorOf(1.5), Policy{})
	assert.Equal(t, 18.51, travel.EmissionResult)

	credit := &domain.Record{Scope: scope.Energy, ActivityValue: 100, RecValue: 300}
	Recalculate(credit, factorOf(0.78), Policy{})
	assert.Equal(t, -156.0, credit.EmissionResult)

	missing := &domain.Record{Scope: scope.Direct, ActivityValue: 10, EmissionResult: 99}
	Recalculate(missing, nil, Policy{})
	assert.Equal(t, 0.0, missing.EmissionResult)
}
