// Package engine keeps the window/display model consistent with compositor
// notifications and applies the saturation transform to the displays of the
// focused window when its title matches a filter.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bryanchriswhite/FocusVibrance/internal/ctm"
	"github.com/bryanchriswhite/FocusVibrance/internal/diff"
	"github.com/bryanchriswhite/FocusVibrance/internal/display"
	"github.com/bryanchriswhite/FocusVibrance/internal/logger"
	"github.com/bryanchriswhite/FocusVibrance/internal/notify"
	"github.com/bryanchriswhite/FocusVibrance/internal/window"
)

// Phase is the dispatch loop state
type Phase string

const (
	PhaseAwaitingCapabilities Phase = "awaiting_capabilities"
	PhaseRunning              Phase = "running"
)

// Options configures an Engine
type Options struct {
	// TitleFilters are matched exactly against the focused window title
	TitleFilters []string

	// Saturation is the value fed to ctm.Saturation, already validated
	Saturation float64

	// DryRun tracks state without sending transform requests
	DryRun bool
}

type titleFilters map[string]struct{}

func newTitleFilters(titles []string) titleFilters {
	f := make(titleFilters, len(titles))
	for _, t := range titles {
		f[t] = struct{}{}
	}
	return f
}

func (f titleFilters) match(title string) bool {
	_, ok := f[title]
	return ok
}

// Engine owns the registries, the focus tracker and the set of displays
// currently carrying the transform. It is not safe for concurrent use; one
// goroutine drives it through Run or Init/Process.
type Engine struct {
	session  Session
	opts     Options
	filters  titleFilters
	matrix   ctm.Matrix
	observer Observer
	log      *zerolog.Logger

	phase         Phase
	transforms    TransformChannel
	managerGlobal *notify.Global

	displays *display.Registry
	windows  *window.Registry
	focus    window.FocusTracker
	applied  []display.ID

	// planned is what a dry run would have applied
	planned []display.ID
}

// New creates an engine in the AwaitingCapabilities phase
func New(session Session, opts Options) *Engine {
	return &Engine{
		session:  session,
		opts:     opts,
		filters:  newTitleFilters(opts.TitleFilters),
		matrix:   ctm.Saturation(opts.Saturation),
		log:      logger.WithComponent("engine"),
		phase:    PhaseAwaitingCapabilities,
		displays: display.NewRegistry(),
		windows:  window.NewRegistry(),
	}
}

// SetObserver registers a sink for state snapshots
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// Phase returns the current dispatch state
func (e *Engine) Phase() Phase {
	return e.phase
}

// Applied returns the displays currently carrying the transform
func (e *Engine) Applied() []display.ID {
	return append([]display.ID{}, e.applied...)
}

// Init performs capability discovery: one roundtrip during which outputs
// and the transform manager are bound. The toplevel manager is bound
// afterwards so that outputs are known before toplevels reference them.
func (e *Engine) Init() error {
	if e.phase != PhaseAwaitingCapabilities {
		return nil
	}

	batch, err := e.session.Roundtrip()
	if err != nil {
		return fmt.Errorf("failed to discover compositor globals: %w", err)
	}
	for _, n := range batch {
		if err := e.apply(n); err != nil {
			return err
		}
	}

	// Fatal errors are reported once, by the caller.
	if e.transforms == nil {
		return &MissingCapabilityError{
			Interface: notify.InterfaceCTMManager,
			Hint:      "is the compositor Hyprland?",
		}
	}
	if e.managerGlobal == nil {
		return &MissingCapabilityError{Interface: notify.InterfaceToplevelManager}
	}

	if err := e.session.BindWindowManager(*e.managerGlobal); err != nil {
		return fmt.Errorf("failed to bind %s: %w", notify.InterfaceToplevelManager, err)
	}
	e.log.Info().
		Uint32("version", e.managerGlobal.Version).
		Msg("Bound to toplevel manager")

	e.phase = PhaseRunning
	e.log.Info().
		Int("displays", e.displays.Len()).
		Float64("saturation", e.opts.Saturation).
		Strs("title_filters", e.opts.TitleFilters).
		Bool("dry_run", e.opts.DryRun).
		Msg("Colour transform control initialized")
	return nil
}

// Run initializes the engine and processes notification batches until the
// session fails. If ctx is done by then, ctx.Err() is returned instead of
// the transport error.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Init(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	e.publish()

	for {
		batch, err := e.session.NextBatch()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read compositor events: %w", err)
		}
		if err := e.Process(batch); err != nil {
			return err
		}
	}
}

// Settle runs one more roundtrip and processes its notifications
func (e *Engine) Settle() error {
	batch, err := e.session.Roundtrip()
	if err != nil {
		return fmt.Errorf("failed to sync with compositor: %w", err)
	}
	return e.Process(batch)
}

// Process applies one batch of notifications, then brings the transformed
// displays in line with the desired set.
func (e *Engine) Process(batch []notify.Notification) error {
	for _, n := range batch {
		if err := e.apply(n); err != nil {
			return err
		}
	}
	if e.phase != PhaseRunning {
		return nil
	}
	if err := e.reconcile(); err != nil {
		return err
	}
	e.publish()
	return nil
}

// Restore removes the transform from every display that carries it
func (e *Engine) Restore() error {
	if e.transforms == nil || e.opts.DryRun || len(e.applied) == 0 {
		return nil
	}
	for _, d := range e.applied {
		if err := e.transforms.ClearTransform(d); err != nil {
			return fmt.Errorf("failed to clear transform on %s: %w", e.displays.Name(d), err)
		}
	}
	if err := e.transforms.Commit(); err != nil {
		return fmt.Errorf("failed to commit transforms: %w", err)
	}
	e.log.Info().
		Strs("displays", e.displays.Names(e.applied)).
		Msg("Restored original colours")
	e.applied = nil
	e.publish()
	return nil
}

// Desired returns the displays that should carry the transform right now
func (e *Engine) Desired() []display.ID {
	return DesiredDisplays(&e.focus, e.windows, e.filters)
}

// DesiredDisplays returns the displays of the focused window when its
// title is one of filters, nil otherwise.
func DesiredDisplays(focus *window.FocusTracker, windows *window.Registry, filters map[string]struct{}) []display.ID {
	w := focus.Current(windows)
	if w == nil || !w.HasTitle {
		return nil
	}
	if _, ok := filters[w.Title]; !ok {
		return nil
	}
	return append([]display.ID{}, w.Displays...)
}

func (e *Engine) reconcile() error {
	desired := e.Desired()
	if e.opts.DryRun {
		removed, _, added := diff.Compute(e.planned, desired)
		if diff.Changed(removed, added) {
			e.log.Debug().
				Strs("would_clear", e.displays.Names(removed)).
				Strs("would_saturate", e.displays.Names(added)).
				Msg("Dry run, transform unchanged")
			e.planned = desired
		}
		return nil
	}

	removed, unchanged, added := diff.Compute(e.applied, desired)
	if !diff.Changed(removed, added) {
		return nil
	}

	for _, d := range removed {
		if err := e.transforms.ClearTransform(d); err != nil {
			return fmt.Errorf("failed to clear transform on %s: %w", e.displays.Name(d), err)
		}
	}
	for _, d := range added {
		if err := e.transforms.SetLinearTransform(d, e.matrix); err != nil {
			return fmt.Errorf("failed to set transform on %s: %w", e.displays.Name(d), err)
		}
	}
	if err := e.transforms.Commit(); err != nil {
		return fmt.Errorf("failed to commit transforms: %w", err)
	}

	e.applied = append(unchanged, added...)
	e.log.Info().
		Strs("cleared", e.displays.Names(removed)).
		Strs("saturated", e.displays.Names(added)).
		Strs("kept", e.displays.Names(unchanged)).
		Msg("Transform updated")
	return nil
}

func (e *Engine) apply(n notify.Notification) error {
	switch n := n.(type) {
	case notify.GlobalAnnounced:
		return e.handleGlobal(n.Global)

	case notify.GlobalRemoved:
		e.log.Debug().Uint32("name", n.Name).Msg("Global removed, ignoring")

	case notify.DisplayNamed:
		e.displays.Register(n.Display, n.Name)
		e.log.Debug().Uint32("display", uint32(n.Display)).Str("name", n.Name).Msg("Discovered display")

	case notify.DisplayDescribed:
		e.displays.Describe(n.Display, n.Description)

	case notify.WindowAppeared:
		e.windows.GetOrCreate(n.Window)
		e.log.Debug().Stringer("window", n.Window).Msg("New toplevel found")

	case notify.TitleChanged:
		w := e.windows.SetTitle(n.Window, n.Title)
		e.log.Debug().Str("window", w.Label()).Msg("Toplevel title updated")

	case notify.AppIDChanged:
		w := e.windows.SetAppID(n.Window, n.AppID)
		e.log.Debug().Str("window", w.Label()).Str("app_id", n.AppID).Msg("Toplevel app id updated")

	case notify.EnteredDisplay:
		w := e.windows.AddDisplay(n.Window, n.Display)
		e.log.Debug().Str("window", w.Label()).Str("display", e.displays.Name(n.Display)).Msg("Toplevel entered display")

	case notify.LeftDisplay:
		w := e.windows.RemoveDisplay(n.Window, n.Display)
		e.log.Debug().Str("window", w.Label()).Str("display", e.displays.Name(n.Display)).Msg("Toplevel left display")

	case notify.ActivationChanged:
		w := e.windows.GetOrCreate(n.Window)
		prev, hadFocus := e.focus.Handle()
		e.focus.NotifyActivationChanged(n.Window, n.Active)
		cur, hasFocus := e.focus.Handle()
		if prev != cur || hadFocus != hasFocus {
			ev := e.log.Info().Str("window", w.Label()).Bool("active", n.Active)
			if n.Active && hadFocus && prev != n.Window {
				// Overwrite without a prior deactivation of the old focus.
				ev = ev.Stringer("replaced", prev)
			}
			ev.Msg("Focus changed")
		}

	case notify.WindowClosed:
		e.focus.NotifyWindowRemoved(n.Window)
		if w := e.windows.Find(n.Window); w != nil {
			e.log.Debug().Str("window", w.Label()).Msg("Toplevel closed")
		}
		e.windows.Remove(n.Window)

	case notify.TransformBlocked:
		if e.opts.DryRun {
			e.log.Warn().Msg("Colour transforms are controlled by another client")
			return nil
		}
		return ErrTransformBlocked

	case notify.WindowManagerFinished:
		e.log.Warn().Msg("Toplevel manager finished, focus will no longer update")

	default:
		e.log.Debug().Str("type", fmt.Sprintf("%T", n)).Msg("Ignoring notification")
	}
	return nil
}

func (e *Engine) handleGlobal(g notify.Global) error {
	switch g.Interface {
	case notify.InterfaceOutput:
		id, err := e.session.BindDisplay(g)
		if err != nil {
			return fmt.Errorf("failed to bind %s %d: %w", g.Interface, g.Name, err)
		}
		e.displays.Register(id, "")

	case notify.InterfaceCTMManager:
		if e.phase != PhaseAwaitingCapabilities || e.transforms != nil {
			e.log.Debug().Str("interface", g.Interface).Msg("Ignoring late or duplicate global")
			return nil
		}
		tc, err := e.session.BindTransformControl(g)
		if err != nil {
			return fmt.Errorf("failed to bind %s: %w", g.Interface, err)
		}
		e.transforms = tc
		e.log.Info().Uint32("version", g.Version).Msg("Bound to colour transform manager")

	case notify.InterfaceToplevelManager:
		if e.phase != PhaseAwaitingCapabilities || e.managerGlobal != nil {
			e.log.Debug().Str("interface", g.Interface).Msg("Ignoring late or duplicate global")
			return nil
		}
		global := g
		e.managerGlobal = &global
		e.log.Info().Uint32("version", g.Version).Msg("Discovered toplevel manager")

	default:
		e.log.Debug().
			Str("interface", g.Interface).
			Uint32("version", g.Version).
			Msg("Received global")
	}
	return nil
}
