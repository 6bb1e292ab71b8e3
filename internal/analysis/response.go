package analysis

import (
	"math"

	"github.com/pkg/errors"
)

// Response summarizes how a series moves from its first to its last
// sample.
type Response struct {
	Initial   float64
	Final     float64
	Peak      float64
	PeakTime  float64
	Overshoot float64 // fraction of the total change, 0 when monotone
	// SettlingTime is the first time after which the series stays within
	// band of Final. Settled is false when it never does before the end.
	SettlingTime float64
	Settled      bool
}

// AnalyzeResponse measures data sampled at times. band is relative to
// the total change; 0.02 is the usual 2% criterion.
func AnalyzeResponse(times, data []float64, band float64) (Response, error) {
	if len(times) != len(data) {
		return Response{}, errors.Errorf("%d times but %d samples", len(times), len(data))
	}
	if len(data) == 0 {
		return Response{}, errors.New("empty series")
	}
	if band <= 0 {
		return Response{}, errors.Errorf("band must be positive, got %v", band)
	}

	r := Response{Initial: data[0], Final: data[len(data)-1]}
	change := r.Final - r.Initial
	dir := 1.0
	if change < 0 {
		dir = -1
	}

	r.Peak, r.PeakTime = data[0], times[0]
	for i, v := range data {
		if dir*(v-r.Peak) > 0 {
			r.Peak, r.PeakTime = v, times[i]
		}
	}
	if change != 0 {
		r.Overshoot = math.Max(0, dir*(r.Peak-r.Final)/math.Abs(change))
	}

	tol := band * math.Abs(change)
	last := -1
	for i, v := range data {
		if math.Abs(v-r.Final) > tol {
			last = i
		}
	}
	switch {
	case last < 0:
		r.SettlingTime, r.Settled = times[0], true
	case last < len(data)-1:
		r.SettlingTime, r.Settled = times[last+1], true
	}
	return r, nil
}
