// Package charts builds Chart.js configurations for the dashboard and owns
// the lifecycle of rendered chart instances.
package charts

import (
	"errors"

	"finboard/internal/core"
)

// Mount points expected by the dashboard page.
const (
	PieMount  = "pieChart"
	LineMount = "lineChart"
)

type Kind string

const (
	Pie  Kind = "pie"
	Line Kind = "line"
)

// PiePalette colours category slices in order.
var PiePalette = []string{"#0098FF", "#66BB6A", "#FF7043", "#AA47BC", "#FFD54F"}

type (
	// Config mirrors the Chart.js {type, data} object.
	Config struct {
		Type Kind `json:"type"`
		Data Data `json:"data"`
	}

	Data struct {
		Labels   []string  `json:"labels"`
		Datasets []Dataset `json:"datasets"`
	}

	Dataset struct {
		Label           string    `json:"label,omitempty"`
		Data            []float64 `json:"data"`
		BackgroundColor any       `json:"backgroundColor,omitempty"`
		BorderColor     string    `json:"borderColor,omitempty"`
		Tension         float64   `json:"tension,omitempty"`
		BorderWidth     int       `json:"borderWidth,omitempty"`
	}
)

// Chart is a live chart instance.
type Chart interface {
	Destroy()
}

// Engine creates chart instances on a mount point.
type Engine interface {
	New(mount string, cfg Config) (Chart, error)
}

var ErrNoEngine = errors.New("charts: no engine configured")

// PieConfig charts category totals.
func PieConfig(byCategory []core.Bucket) Config {
	return Config{
		Type: Pie,
		Data: Data{
			Labels: core.Labels(byCategory),
			Datasets: []Dataset{{
				Data:            core.Totals(byCategory),
				BackgroundColor: PiePalette,
			}},
		},
	}
}

// LineConfig charts monthly totals in the order given.
func LineConfig(byMonth []core.Bucket) Config {
	return Config{
		Type: Line,
		Data: Data{
			Labels: core.Labels(byMonth),
			Datasets: []Dataset{{
				Label:           "Monthly Spend",
				Data:            core.Totals(byMonth),
				BorderColor:     "#00B4FF",
				BackgroundColor: "rgba(0,180,255,0.15)",
				Tension:         0.35,
				BorderWidth:     3,
			}},
		},
	}
}

// Set holds the pie and line chart currently on screen.
// It is not safe for concurrent use; the owner serializes access.
type Set struct {
	pie  Chart
	line Chart
}

// Replace destroys the charts on screen, then creates the new pair.
// If creation fails the set keeps whatever was created.
func (s *Set) Replace(engine Engine, pie, line Config) error {
	if engine == nil {
		return ErrNoEngine
	}
	s.Destroy()

	p, err := engine.New(PieMount, pie)
	if err != nil {
		return err
	}
	s.pie = p
	l, err := engine.New(LineMount, line)
	if err != nil {
		return err
	}
	s.line = l
	return nil
}

// Destroy tears down both charts if present.
func (s *Set) Destroy() {
	if s.pie != nil {
		s.pie.Destroy()
		s.pie = nil
	}
	if s.line != nil {
		s.line.Destroy()
		s.line = nil
	}
}

// Active reports whether any chart is on screen.
func (s *Set) Active() bool {
	return s.pie != nil || s.line != nil
}
