package harp

import (
	"fmt"
	"math"

	"github.com/vbonduro/fieldtech/internal/domain"
)

const (
	MinKVp = 40
	MaxKVp = 150

	// kVp must be within 10% of the selected setting.
	kvpTolerance = 0.10
	// Timer accuracy is 10% of the setting plus 1 ms.
	timeTolerance = 0.10
	timeSlackMS   = 1.0
)

// minimumHVL maps the lowest kVp of each band to the minimum half-value layer
// in mm of aluminium.
var minimumHVL = []struct {
	kvp float64
	mm  float64
}{
	{40, 1.5},
	{71, 2.1},
	{80, 2.3},
	{90, 2.5},
	{100, 2.7},
	{110, 3.0},
	{120, 3.2},
	{130, 3.5},
	{140, 3.8},
	{150, 4.1},
}

// MinimumHVL returns the required half-value layer at kvp. Values outside the
// table clamp to its ends.
func MinimumHVL(kvp float64) float64 {
	min := minimumHVL[0].mm
	for _, b := range minimumHVL {
		if kvp >= b.kvp {
			min = b.mm
		}
	}
	return min
}

// Check is the verdict for one measured quantity.
type Check struct {
	Name     string  `json:"name"`
	Expected string  `json:"expected"`
	Measured float64 `json:"measured"`
	Pass     bool    `json:"pass"`
}

// Evaluate applies the tolerance rules to m. Exposure times are in
// milliseconds.
func Evaluate(m *domain.Measurements) []Check {
	if m == nil {
		return nil
	}

	kvpLimit := m.KVpNominal * kvpTolerance
	timeLimit := m.ExposureTimeNominal*timeTolerance + timeSlackMS
	hvl := MinimumHVL(m.KVpNominal)

	return []Check{
		{
			Name:     "kVp accuracy",
			Expected: fmt.Sprintf("%.1f ± %.1f kVp", m.KVpNominal, kvpLimit),
			Measured: m.KVpMeasured,
			Pass:     math.Abs(m.KVpMeasured-m.KVpNominal) <= kvpLimit,
		},
		{
			Name:     "Timer accuracy",
			Expected: fmt.Sprintf("%.1f ± %.1f ms", m.ExposureTimeNominal, timeLimit),
			Measured: m.ExposureTimeMeasured,
			Pass:     math.Abs(m.ExposureTimeMeasured-m.ExposureTimeNominal) <= timeLimit,
		},
		{
			Name:     "Half-value layer",
			Expected: fmt.Sprintf("min %.1f mm Al", hvl),
			Measured: m.HalfValueLayerMM,
			Pass:     m.HalfValueLayerMM >= hvl,
		},
	}
}

// WithinTolerance reports whether every check in Evaluate(m) passes.
func WithinTolerance(m *domain.Measurements) bool {
	checks := Evaluate(m)
	if len(checks) == 0 {
		return false
	}
	for _, c := range checks {
		if !c.Pass {
			return false
		}
	}
	return true
}
