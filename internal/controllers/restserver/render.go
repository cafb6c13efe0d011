package restserver

import (
	"image"
	"image/color"
	"math"

	"github.com/tlaw6500/cropsif/internal/sif"
)

// Display ranges matching the dashboard's fixed color scales: snapshots on
// a yellow-green ramp over 0.3-0.8 SIF, anomalies on a diverging
// red-yellow-green ramp clipped at +/-50 percent.
const (
	snapshotDisplayMin  = 0.3
	snapshotDisplayMax  = 0.8
	anomalyDisplayLimit = 50.0
)

type rampStop struct {
	t       float64
	r, g, b uint8
}

// Yellow-to-green ramp for SIF magnitude
var snapshotRamp = []rampStop{
	{0.0, 255, 255, 229},
	{0.5, 120, 198, 121},
	{1.0, 0, 104, 55},
}

// Diverging red-yellow-green ramp for percent anomalies
var anomalyRamp = []rampStop{
	{0.0, 165, 0, 38},
	{0.5, 255, 255, 191},
	{1.0, 0, 104, 55},
}

// rampColor interpolates a ramp at position t in [0,1].
func rampColor(ramp []rampStop, t float64) color.NRGBA {
	if t <= ramp[0].t {
		s := ramp[0]
		return color.NRGBA{R: s.r, G: s.g, B: s.b, A: 255}
	}
	for i := 1; i < len(ramp); i++ {
		if t <= ramp[i].t {
			lo, hi := ramp[i-1], ramp[i]
			f := (t - lo.t) / (hi.t - lo.t)
			return color.NRGBA{
				R: uint8(float64(lo.r) + f*(float64(hi.r)-float64(lo.r))),
				G: uint8(float64(lo.g) + f*(float64(hi.g)-float64(lo.g))),
				B: uint8(float64(lo.b) + f*(float64(hi.b)-float64(lo.b))),
				A: 255,
			}
		}
	}
	s := ramp[len(ramp)-1]
	return color.NRGBA{R: s.r, G: s.g, B: s.b, A: 255}
}

// renderGrid paints a grid with the given normalizer and ramp. No-data
// samples come out fully transparent.
func renderGrid(g *sif.Grid, ramp []rampStop, normalize func(float64) float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Cols, g.Rows))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			v := g.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			img.SetNRGBA(c, r, rampColor(ramp, clamp01(normalize(v))))
		}
	}
	return img
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// renderSnapshot paints a SIF grid over the [min,max] display range.
func renderSnapshot(g *sif.Grid, min, max float64) *image.NRGBA {
	return renderGrid(g, snapshotRamp, func(v float64) float64 {
		return (v - min) / (max - min)
	})
}

// renderAnomaly paints an anomaly map over [-limit,+limit] percent.
func renderAnomaly(g *sif.Grid, limit float64) *image.NRGBA {
	return renderGrid(g, anomalyRamp, func(v float64) float64 {
		return (v + limit) / (2 * limit)
	})
}
