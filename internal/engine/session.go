package engine

import (
	"errors"
	"fmt"

	"github.com/bryanchriswhite/FocusVibrance/internal/ctm"
	"github.com/bryanchriswhite/FocusVibrance/internal/display"
	"github.com/bryanchriswhite/FocusVibrance/internal/notify"
)

// Session is the compositor connection as seen by the engine
type Session interface {
	// Roundtrip flushes pending requests and blocks until the compositor
	// has processed them, returning every notification received meanwhile.
	Roundtrip() ([]notify.Notification, error)

	// NextBatch blocks until at least one notification arrives and returns
	// it together with everything else already buffered.
	NextBatch() ([]notify.Notification, error)

	// BindDisplay binds an announced output and returns its identity
	BindDisplay(g notify.Global) (display.ID, error)

	// BindTransformControl binds the colour transform manager
	BindTransformControl(g notify.Global) (TransformChannel, error)

	// BindWindowManager binds the toplevel manager; toplevel
	// notifications follow on subsequent batches.
	BindWindowManager(g notify.Global) error
}

// TransformChannel issues per-display colour transforms. Nothing is visible
// until Commit.
type TransformChannel interface {
	SetLinearTransform(d display.ID, m ctm.Matrix) error
	ClearTransform(d display.ID) error
	Commit() error
}

// Observer receives a copy of the engine state after every processed batch
type Observer interface {
	Publish(Snapshot)
}

var (
	// ErrMissingCapability is wrapped by MissingCapabilityError
	ErrMissingCapability = errors.New("required compositor capability missing")

	// ErrTransformBlocked means another client already controls the colour
	// transforms of this compositor
	ErrTransformBlocked = errors.New("colour transforms are controlled by another client")
)

// MissingCapabilityError names the global that the compositor did not announce
type MissingCapabilityError struct {
	Interface string
	Hint      string
}

func (e *MissingCapabilityError) Error() string {
	msg := fmt.Sprintf("compositor does not provide %s", e.Interface)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

func (e *MissingCapabilityError) Unwrap() error {
	return ErrMissingCapability
}
