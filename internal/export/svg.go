// Package export renders trace columns as standalone SVG charts.
package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Series is one named line of a chart.
type Series struct {
	Name   string
	Values []float64
}

var palette = []string{"#00d7af", "#ffd700", "#ff5f87", "#5fafff", "#afff5f", "#d787ff"}

// SeriesToSVG draws every series against the shared times as polylines
// on one dark chart, with a legend in the top left corner.
func SeriesToSVG(times []float64, series []Series, width, height int) (string, error) {
	if len(times) < 2 {
		return "", errors.Errorf("need at least 2 samples, got %d", len(times))
	}
	if width <= 0 || height <= 0 {
		return "", errors.Errorf("invalid size %dx%d", width, height)
	}

	minX, maxX := times[0], times[len(times)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		if len(s.Values) != len(times) {
			return "", errors.Errorf("series %s has %d samples, want %d", s.Name, len(s.Values), len(times))
		}
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if math.IsInf(minY, 1) {
		minY, maxY = 0, 0
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if minY < 0 && maxY > 0 {
		zero := float64(height) - (0-minY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#333333" stroke-width="1"/>
`, zero, width, zero))
	}

	for n, s := range series {
		color := palette[n%len(palette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, color))
		pen := "M"
		for i, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				pen = "M"
				continue
			}
			x := (times[i] - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if pen == "L" {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("%s%.1f,%.1f", pen, x, y))
			pen = "L"
		}
		sb.WriteString(`"/>
`)
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*n, color, html.EscapeString(s.Name)))
	}

	sb.WriteString(`</svg>`)
	return sb.String(), nil
}
