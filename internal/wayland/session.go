package wayland

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bryanchriswhite/FocusVibrance/internal/display"
	"github.com/bryanchriswhite/FocusVibrance/internal/engine"
	"github.com/bryanchriswhite/FocusVibrance/internal/logger"
	"github.com/bryanchriswhite/FocusVibrance/internal/notify"
	"github.com/bryanchriswhite/FocusVibrance/internal/window"
)

var _ engine.Session = (*Session)(nil)

// ProtocolError is a fatal wl_display.error sent by the compositor
type ProtocolError struct {
	Object    uint32
	Interface string
	Code      uint32
	Message   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on %s@%d (code %d): %s", e.Interface, e.Object, e.Code, e.Message)
}

// Session tracks the client's objects on one connection and turns incoming
// events into notifications. It is not safe for concurrent use except for
// Interrupt.
type Session struct {
	conn     *Conn
	log      *zerolog.Logger
	objects  map[uint32]objectKind
	nextID   uint32
	registry uint32
	synced   map[uint32]bool
}

// Connect dials the compositor and requests its registry
func Connect(name string) (*Session, error) {
	conn, err := Dial(name)
	if err != nil {
		return nil, err
	}
	s, err := NewSession(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// NewSession starts a session on an established connection. The
// get_registry request is queued and goes out with the first roundtrip.
func NewSession(conn *Conn) (*Session, error) {
	s := &Session{
		conn:    conn,
		log:     logger.WithComponent("wayland"),
		objects: map[uint32]objectKind{displayID: kindDisplay},
		nextID:  displayID + 1,
		synced:  make(map[uint32]bool),
	}

	s.registry = s.newObject(kindRegistry)
	if err := s.conn.Send(NewRequest(displayID, displayGetRegistry).Uint(s.registry).Message()); err != nil {
		return nil, fmt.Errorf("failed to request registry: %w", err)
	}
	return s, nil
}

func (s *Session) newObject(kind objectKind) uint32 {
	id := s.nextID
	s.nextID++
	s.objects[id] = kind
	return id
}

// Roundtrip flushes queued requests and reads events until the compositor
// acknowledges a sync request
func (s *Session) Roundtrip() ([]notify.Notification, error) {
	callback := s.newObject(kindCallback)
	if err := s.conn.Send(NewRequest(displayID, displaySync).Uint(callback).Message()); err != nil {
		return nil, err
	}
	if err := s.conn.Flush(); err != nil {
		return nil, err
	}

	var out []notify.Notification
	for !s.synced[callback] {
		m, err := s.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("roundtrip: %w", err)
		}
		if out, err = s.dispatch(m, out); err != nil {
			return nil, err
		}
	}
	delete(s.synced, callback)
	return out, nil
}

// NextBatch flushes queued requests and blocks until at least one
// notification has been decoded, then keeps reading while more events are
// already buffered. Events that only update session bookkeeping, such as
// delete_id, never end a batch on their own.
func (s *Session) NextBatch() ([]notify.Notification, error) {
	if err := s.conn.Flush(); err != nil {
		return nil, err
	}

	var out []notify.Notification
	for len(out) == 0 || s.conn.Buffered() > 0 {
		m, err := s.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if out, err = s.dispatch(m, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Session) bind(g notify.Global, kind objectKind, maxVersion uint32) (uint32, error) {
	version := min(g.Version, maxVersion)
	id := s.newObject(kind)
	req := NewRequest(s.registry, registryBind).
		Uint(g.Name).
		Str(g.Interface).
		Uint(version).
		Uint(id)
	if err := s.conn.Send(req.Message()); err != nil {
		delete(s.objects, id)
		return 0, err
	}
	s.log.Debug().
		Str("interface", g.Interface).
		Uint32("version", version).
		Uint32("id", id).
		Msg("Bound global")
	return id, nil
}

// BindDisplay binds a wl_output global
func (s *Session) BindDisplay(g notify.Global) (display.ID, error) {
	id, err := s.bind(g, kindOutput, outputVersion)
	if err != nil {
		return 0, err
	}
	return display.ID(id), nil
}

// BindTransformControl binds the Hyprland CTM manager
func (s *Session) BindTransformControl(g notify.Global) (engine.TransformChannel, error) {
	id, err := s.bind(g, kindCTMManager, ctmManagerVersion)
	if err != nil {
		return nil, err
	}
	return &TransformControl{conn: s.conn, id: id}, nil
}

// BindWindowManager binds the wlr foreign toplevel manager and flushes so
// the compositor starts announcing toplevels
func (s *Session) BindWindowManager(g notify.Global) error {
	if _, err := s.bind(g, kindToplevelManager, toplevelManagerVersion); err != nil {
		return err
	}
	return s.conn.Flush()
}

// Interrupt unblocks a pending Roundtrip or NextBatch. It may be called
// from another goroutine.
func (s *Session) Interrupt() error {
	return s.conn.Interrupt()
}

// Close closes the connection
func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) dispatch(m Message, out []notify.Notification) ([]notify.Notification, error) {
	kind, ok := s.objects[m.Object]
	if !ok {
		// Events can still arrive for objects we already destroyed.
		s.log.Debug().Uint32("object", m.Object).Uint16("opcode", m.Opcode).Msg("Event for unknown object, ignoring")
		return out, nil
	}

	r := NewArgReader(m.Body)
	var n notify.Notification

	switch kind {
	case kindDisplay:
		switch m.Opcode {
		case displayEventError:
			object, code, msg := r.Object(), r.Uint(), r.Str()
			if r.Err() == nil {
				iface := "unknown"
				if k, ok := s.objects[object]; ok {
					iface = k.String()
				}
				return out, &ProtocolError{Object: object, Interface: iface, Code: code, Message: msg}
			}
		case displayEventDeleteID:
			id := r.Uint()
			if r.Err() == nil {
				delete(s.objects, id)
			}
		}

	case kindRegistry:
		switch m.Opcode {
		case registryEventGlobal:
			g := notify.Global{Name: r.Uint(), Interface: r.Str(), Version: r.Uint()}
			n = notify.GlobalAnnounced{Global: g}
		case registryEventGlobalRemove:
			n = notify.GlobalRemoved{Name: r.Uint()}
		}

	case kindCallback:
		if m.Opcode == callbackEventDone {
			s.synced[m.Object] = true
			delete(s.objects, m.Object)
		}

	case kindOutput:
		switch m.Opcode {
		case outputEventName:
			n = notify.DisplayNamed{Display: display.ID(m.Object), Name: r.Str()}
		case outputEventDescription:
			n = notify.DisplayDescribed{Display: display.ID(m.Object), Description: r.Str()}
		}

	case kindToplevelManager:
		switch m.Opcode {
		case toplevelManagerEventToplevel:
			id := r.Object()
			if r.Err() == nil {
				s.objects[id] = kindToplevel
			}
			n = notify.WindowAppeared{Window: window.Handle(id)}
		case toplevelManagerEventFinished:
			n = notify.WindowManagerFinished{}
		}

	case kindToplevel:
		n = s.decodeToplevel(m, r)

	case kindCTMManager:
		if m.Opcode == ctmEventBlocked {
			n = notify.TransformBlocked{}
		}
	}

	if err := r.Err(); err != nil {
		return out, fmt.Errorf("failed to decode %s event %d: %w", kind, m.Opcode, err)
	}
	if n != nil {
		out = append(out, n)
	}
	return out, nil
}

func (s *Session) decodeToplevel(m Message, r *ArgReader) notify.Notification {
	h := window.Handle(m.Object)

	switch m.Opcode {
	case toplevelEventTitle:
		return notify.TitleChanged{Window: h, Title: r.Str()}
	case toplevelEventAppID:
		return notify.AppIDChanged{Window: h, AppID: r.Str()}
	case toplevelEventOutputEnter:
		return notify.EnteredDisplay{Window: h, Display: display.ID(r.Object())}
	case toplevelEventOutputLeave:
		return notify.LeftDisplay{Window: h, Display: display.ID(r.Object())}
	case toplevelEventState:
		active := false
		for _, state := range r.Uints() {
			if state == toplevelStateActivated {
				active = true
			}
		}
		return notify.ActivationChanged{Window: h, Active: active}
	case toplevelEventDone:
		return nil
	case toplevelEventClosed:
		// The handle is inert now; release it.
		if err := s.conn.Send(NewRequest(m.Object, toplevelDestroy).Message()); err != nil {
			s.log.Warn().Err(err).Uint32("object", m.Object).Msg("Failed to destroy closed toplevel")
		}
		delete(s.objects, m.Object)
		return notify.WindowClosed{Window: h}
	}
	return nil
}
