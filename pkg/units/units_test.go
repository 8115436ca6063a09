package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 268.0, Round2(268))
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, -1.01, Round2(-1.005))
	assert.Equal(t, 624.0, Round2((1000-200)*0.78))
}

func TestKgToTons(t *testing.T) {
	assert.Equal(t, 0.27, KgToTons(268))
	assert.Equal(t, 752733.86, KgToTons(752733860))
	assert.Equal(t, 0.0, KgToTons(0))
	assert.Equal(t, -0.16, KgToTons(-156))
}

func TestKgToTonsStaysWithinHalfCent(t *testing.T) {
	samples := []float64{0.01, 3.3, 1234.56, 98765.43, 1e6 + 0.37, 752733860.12, 41.99}
	for _, kg := range samples {
		tons := KgToTons(kg)
		assert.LessOrEqual(t, math.Abs(tons-kg/1000), 0.005, "kg=%v", kg)
	}
}

func TestSum(t *testing.T) {
	assert.Equal(t, 600.0, Sum(100, 200, 300))
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.Equal(t, 0.0, Sum())
}
