// Package export renders stored run samples to portable formats:
// top-down SVG plots of body tracks and JSON dumps.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/maren-k/orbitlab/internal/store"
)

var palette = []string{
	"#00ff88", "#ff8800", "#00aaff", "#ff00aa", "#aaff00", "#aa00ff",
}

// TrajectoriesToSVG draws the XY (top-down) track of every body in the
// samples, one path per body, with 10% padding around the bounds.
func TrajectoriesToSVG(samples []store.Sample, width, height int) string {
	if len(samples) == 0 {
		return ""
	}

	byBody := make(map[string][]store.Sample)
	for _, sm := range samples {
		byBody[sm.Body] = append(byBody[sm.Body], sm)
	}
	names := make([]string, 0, len(byBody))
	for name := range byBody {
		names = append(names, name)
	}
	sort.Strings(names)

	minX, maxX := samples[0].X, samples[0].X
	minY, maxY := samples[0].Y, samples[0].Y
	for _, sm := range samples {
		if sm.X < minX {
			minX = sm.X
		}
		if sm.X > maxX {
			maxX = sm.X
		}
		if sm.Y < minY {
			minY = sm.Y
		}
		if sm.Y > maxY {
			maxY = sm.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for bi, name := range names {
		pts := byBody[name]
		if len(pts) == 0 {
			continue
		}
		color := palette[bi%len(palette)]

		px := func(x float64) float64 { return (x - minX) / rangeX * float64(width) }
		py := func(y float64) float64 { return float64(height) - (y-minY)/rangeY*float64(height) }

		if len(pts) == 1 {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
`, px(pts[0].X), py(pts[0].Y), color))
			continue
		}

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for i, p := range pts {
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(p.X), py(p.Y)))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(p.X), py(p.Y)))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

type jsonSample struct {
	Time float64 `json:"time"`
	Body string  `json:"body"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// SamplesToJSON writes the samples as an indented JSON array.
func SamplesToJSON(path string, samples []store.Sample) error {
	out := make([]jsonSample, len(samples))
	for i, sm := range samples {
		out[i] = jsonSample{Time: sm.Time, Body: sm.Body, X: sm.X, Y: sm.Y, Z: sm.Z}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
