package engine

import (
	"github.com/bryanchriswhite/FocusVibrance/internal/display"
	"github.com/bryanchriswhite/FocusVibrance/internal/window"
)

// Snapshot is a detached copy of the engine state
type Snapshot struct {
	Phase        Phase             `json:"phase"`
	Focused      *window.Window    `json:"focused"`
	Matched      bool              `json:"matched"`
	Windows      []window.Window   `json:"windows"`
	Displays     []display.Display `json:"displays"`
	Desired      []display.ID      `json:"desired"`
	Applied      []display.ID      `json:"applied"`
	Saturation   float64           `json:"saturation"`
	TitleFilters []string          `json:"title_filters"`
	DryRun       bool              `json:"dry_run,omitempty"`
}

// Snapshot copies the current state
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Phase:        e.phase,
		Windows:      e.windows.List(),
		Displays:     e.displays.List(),
		Desired:      e.Desired(),
		Applied:      append([]display.ID{}, e.applied...),
		Saturation:   e.opts.Saturation,
		TitleFilters: append([]string{}, e.opts.TitleFilters...),
		DryRun:       e.opts.DryRun,
	}
	if s.Desired == nil {
		s.Desired = []display.ID{}
	}

	if w := e.focus.Current(e.windows); w != nil {
		for i := range s.Windows {
			if s.Windows[i].Handle == w.Handle {
				s.Focused = &s.Windows[i]
				break
			}
		}
		s.Matched = w.HasTitle && e.filters.match(w.Title)
	}
	return s
}

func (e *Engine) publish() {
	if e.observer == nil {
		return
	}
	e.observer.Publish(e.Snapshot())
}
