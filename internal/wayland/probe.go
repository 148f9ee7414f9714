package wayland

import (
	"fmt"

	"github.com/bryanchriswhite/FocusVibrance/internal/engine"
)

// Probe connects to the compositor, lets a dry-run engine settle and
// returns what it saw. Nothing is changed on screen.
func Probe(name string, opts engine.Options) (engine.Snapshot, error) {
	session, err := Connect(name)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("failed to connect to compositor: %w", err)
	}
	defer session.Close()

	opts.DryRun = true
	eng := engine.New(session, opts)
	if err := eng.Init(); err != nil {
		return engine.Snapshot{}, err
	}
	// Toplevels and output names arrive after the first roundtrip.
	if err := eng.Settle(); err != nil {
		return engine.Snapshot{}, err
	}
	return eng.Snapshot(), nil
}
