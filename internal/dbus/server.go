package dbus

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/rs/zerolog"

	"github.com/bryanchriswhite/FocusVibrance/internal/api"
	"github.com/bryanchriswhite/FocusVibrance/internal/engine"
	"github.com/bryanchriswhite/FocusVibrance/internal/logger"
)

const (
	dbusServiceName = "io.github.bryanchriswhite.FocusVibrance"
	dbusObjectPath  = "/io/github/bryanchriswhite/FocusVibrance"
	dbusInterface   = "io.github.bryanchriswhite.FocusVibrance"
)

// Server exposes engine status on the session bus. It is read-only: the
// methods report the latest snapshot and signals announce changes.
type Server struct {
	conn *dbus.Conn
	hub  *api.Hub
	log  *zerolog.Logger

	mu      sync.Mutex
	latest  engine.Snapshot
	focus   focusState
	applied []string

	emit func(name string, args ...any)
}

type focusState struct {
	title   string
	matched bool
}

// NewServer creates a D-Bus status service fed by hub
func NewServer(hub *api.Hub) *Server {
	s := &Server{
		hub:     hub,
		log:     logger.WithComponent("dbus"),
		applied: []string{},
	}
	s.emit = s.emitSignal
	return s
}

// Start connects to the session bus and exports the status object
func (s *Server) Start() error {
	var err error
	s.conn, err = dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	reply, err := s.conn.RequestName(dbusServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		s.conn.Close()
		return fmt.Errorf("name already taken: %s", dbusServiceName)
	}

	if err := s.conn.Export(s, dbusObjectPath, dbusInterface); err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: dbusObjectPath,
		Interfaces: []introspect.Interface{{
			Name: dbusInterface,
			Methods: []introspect.Method{
				{
					Name: "GetStatus",
					Args: []introspect.Arg{
						{Name: "snapshot_json", Type: "s", Direction: "out"},
					},
				},
				{
					Name: "GetFocused",
					Args: []introspect.Arg{
						{Name: "title", Type: "s", Direction: "out"},
						{Name: "matched", Type: "b", Direction: "out"},
					},
				},
				{
					Name: "GetApplied",
					Args: []introspect.Arg{
						{Name: "displays", Type: "as", Direction: "out"},
					},
				},
			},
			Signals: []introspect.Signal{
				{
					Name: "FocusChanged",
					Args: []introspect.Arg{
						{Name: "title", Type: "s"},
						{Name: "matched", Type: "b"},
					},
				},
				{
					Name: "TransformChanged",
					Args: []introspect.Arg{
						{Name: "displays", Type: "as"},
					},
				},
			},
		}},
	}

	err = s.conn.Export(introspect.NewIntrospectable(node), dbusObjectPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	s.log.Info().Str("service", dbusServiceName).Msg("D-Bus status service started")
	return nil
}

// Watch follows hub snapshots until ctx is done, then releases the bus
func (s *Server) Watch(ctx context.Context) {
	updates := s.hub.Subscribe()
	defer s.hub.Unsubscribe(updates)
	defer s.Stop()

	if current, ok := s.hub.Latest(); ok {
		s.update(current)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			s.update(snapshot)
		}
	}
}

// Stop closes the bus connection
func (s *Server) Stop() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		s.log.Info().Msg("D-Bus status service stopped")
	}
}

// update records snapshot and signals what changed
func (s *Server) update(snapshot engine.Snapshot) {
	focus := focusOf(snapshot)
	applied := appliedNames(snapshot)

	s.mu.Lock()
	focusChanged := focus != s.focus
	appliedChanged := !slices.Equal(applied, s.applied)
	s.latest = snapshot
	s.focus = focus
	s.applied = applied
	s.mu.Unlock()

	if focusChanged {
		s.emit("FocusChanged", focus.title, focus.matched)
	}
	if appliedChanged {
		s.emit("TransformChanged", applied)
	}
}

func focusOf(snapshot engine.Snapshot) focusState {
	if snapshot.Focused == nil {
		return focusState{}
	}
	return focusState{title: snapshot.Focused.Title, matched: snapshot.Matched}
}

// appliedNames resolves the applied displays to their output names
func appliedNames(snapshot engine.Snapshot) []string {
	names := make([]string, 0, len(snapshot.Applied))
	for _, id := range snapshot.Applied {
		name := id.String()
		for _, d := range snapshot.Displays {
			if d.ID == id && d.Name != "" {
				name = d.Name
				break
			}
		}
		names = append(names, name)
	}
	return names
}

// GetStatus returns the latest snapshot as JSON (D-Bus method)
func (s *Server) GetStatus() (string, *dbus.Error) {
	s.mu.Lock()
	snapshot := s.latest
	s.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

// GetFocused returns the focused window title and whether it matched (D-Bus method)
func (s *Server) GetFocused() (string, bool, *dbus.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus.title, s.focus.matched, nil
}

// GetApplied returns the names of the transformed displays (D-Bus method)
func (s *Server) GetApplied() ([]string, *dbus.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.applied), nil
}

func (s *Server) emitSignal(name string, args ...any) {
	if s.conn == nil {
		s.log.Warn().Str("signal", name).Msg("Cannot emit signal without a bus connection")
		return
	}

	if err := s.conn.Emit(dbus.ObjectPath(dbusObjectPath), dbusInterface+"."+name, args...); err != nil {
		s.log.Error().Err(err).Str("signal", name).Msg("Failed to emit signal")
		return
	}
	s.log.Debug().Str("signal", name).Msg("Emitted signal")
}
