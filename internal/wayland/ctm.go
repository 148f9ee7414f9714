package wayland

import (
	"github.com/bryanchriswhite/FocusVibrance/internal/ctm"
	"github.com/bryanchriswhite/FocusVibrance/internal/display"
	"github.com/bryanchriswhite/FocusVibrance/internal/engine"
)

var _ engine.TransformChannel = (*TransformControl)(nil)

// TransformControl drives a bound hyprland_ctm_control_manager_v1. Matrices
// are staged by the compositor and shown together on Commit.
type TransformControl struct {
	conn *Conn
	id   uint32
}

// SetLinearTransform stages m for output d
func (t *TransformControl) SetLinearTransform(d display.ID, m ctm.Matrix) error {
	req := NewRequest(t.id, ctmSetForOutput).Object(uint32(d))
	for _, v := range m {
		req.Fixed(v)
	}
	return t.conn.Send(req.Message())
}

// ClearTransform stages the identity matrix for output d
func (t *TransformControl) ClearTransform(d display.ID) error {
	return t.SetLinearTransform(d, ctm.Identity())
}

// Commit applies all staged matrices at once and flushes the socket
func (t *TransformControl) Commit() error {
	if err := t.conn.Send(NewRequest(t.id, ctmCommit).Message()); err != nil {
		return err
	}
	return t.conn.Flush()
}
