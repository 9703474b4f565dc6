// Package measure defines strongly-typed scalar measures used throughout the
// search engine: Distance, Duration, Load, Cost, and Coordinate. Each is a
// named int64 (or float64, for Coordinate) so that a distance can never be
// silently added to a load or a cost at compile time.
//
// Arithmetic on Distance, Duration, Load, and Cost is overflow-checked:
// Add and Sub saturate at the int64 bounds rather than wrapping; they do not
// report whether saturation occurred. This mirrors the bounds-checked accessors in
// the teacher's matrix package (Dense.At/Set), generalized from index-range
// checking to arithmetic-range checking.
package measure

import "math"

// Distance is a travel distance between two locations, in the instance's
// native distance unit (commonly 0.1 units for VRPLIB EUC_2D instances).
type Distance int64

// Duration is a travel or service duration, in the instance's native time
// unit (commonly seconds).
type Duration int64

// Load is a demand, supply, or capacity quantity along one load dimension.
type Load int64

// Cost is a monetary or penalised-objective quantity.
type Cost int64

// Coordinate is a client or depot location coordinate.
type Coordinate float64

// Add returns a+b, saturating at math.MaxInt64 / math.MinInt64 on overflow.
func (a Distance) Add(b Distance) Distance { return Distance(addSat(int64(a), int64(b))) }

// Sub returns a-b, saturating at math.MaxInt64 / math.MinInt64 on overflow.
func (a Distance) Sub(b Distance) Distance { return Distance(subSat(int64(a), int64(b))) }

// Add returns a+b, saturating at math.MaxInt64 / math.MinInt64 on overflow.
func (a Duration) Add(b Duration) Duration { return Duration(addSat(int64(a), int64(b))) }

// Sub returns a-b, saturating at math.MaxInt64 / math.MinInt64 on overflow.
func (a Duration) Sub(b Duration) Duration { return Duration(subSat(int64(a), int64(b))) }

// Add returns a+b, saturating at math.MaxInt64 / math.MinInt64 on overflow.
func (a Load) Add(b Load) Load { return Load(addSat(int64(a), int64(b))) }

// Sub returns a-b, saturating at math.MaxInt64 / math.MinInt64 on overflow.
func (a Load) Sub(b Load) Load { return Load(subSat(int64(a), int64(b))) }

// Add returns a+b, saturating at math.MaxInt64 / math.MinInt64 on overflow.
func (a Cost) Add(b Cost) Cost { return Cost(addSat(int64(a), int64(b))) }

// Sub returns a-b, saturating at math.MaxInt64 / math.MinInt64 on overflow.
func (a Cost) Sub(b Cost) Cost { return Cost(subSat(int64(a), int64(b))) }

// Scale multiplies a Cost by a rational weight, rounding to nearest.
func (a Cost) Scale(weight float64) Cost {
	return Cost(math.Round(float64(a) * weight))
}

// Max returns the greater of a and b.
func Max[T ~int64](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Min returns the lesser of a and b.
func Min[T ~int64](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// addSat adds two int64 values, saturating instead of wrapping on overflow.
func addSat(a, b int64) int64 {
	sum := a + b
	// Overflow iff operands share a sign and the result's sign differs.
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		if b > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return sum
}

// subSat subtracts two int64 values, saturating instead of wrapping on underflow/overflow.
func subSat(a, b int64) int64 {
	if b == math.MinInt64 {
		// -b would overflow; handle separately.
		if a >= 0 {
			return math.MaxInt64
		}
		return addSat(a, math.MaxInt64)
	}
	return addSat(a, -b)
}
