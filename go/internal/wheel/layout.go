package wheel

import (
	"math"

	"github.com/mcdev12/wheelspin/go/internal/models"
)

// ActiveEntries returns the entries that take part in spins, in roster order.
func ActiveEntries(entries []models.Entry) []models.Entry {
	active := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Hidden {
			active = append(active, e)
		}
	}
	return active
}

// ComputeLayout splits the wheel into equal slices, one per active entry.
// Slice i spans [i*360/n, (i+1)*360/n) clockwise from the top of the wheel.
func ComputeLayout(entries []models.Entry) []Slice {
	active := ActiveEntries(entries)
	n := len(active)
	if n == 0 {
		return []Slice{}
	}

	width := SliceAngle(n)
	layout := make([]Slice, n)
	for i, e := range active {
		start := width * float64(i)
		end := width * float64(i+1)
		if i == n-1 {
			end = 360
		}
		layout[i] = Slice{
			Entry:      e,
			Index:      i,
			StartAngle: start,
			EndAngle:   end,
			MidAngle:   start + width/2,
		}
	}
	return layout
}

// SliceAngle is the width in degrees of each of n slices.
func SliceAngle(n int) float64 {
	if n <= 0 {
		return 0
	}
	return 360 / float64(n)
}

// TargetOffset is the absolute wheel orientation that centers slice i of n
// under the pointer at the top.
func TargetOffset(i, n int) float64 {
	a := SliceAngle(n)
	return normalizeAngle(360 - (a*float64(i) + a/2))
}

// Travel is the forward rotation from baseline that lands on target after fullTurns turns.
func Travel(baseline, target float64, fullTurns int) float64 {
	return float64(fullTurns)*360 + normalizeAngle(target-baseline)
}

func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
