package wayland

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/bryanchriswhite/FocusVibrance/internal/ctm"
	"github.com/bryanchriswhite/FocusVibrance/internal/display"
	"github.com/bryanchriswhite/FocusVibrance/internal/notify"
	"github.com/bryanchriswhite/FocusVibrance/internal/window"
)

// Client object ids in allocation order
const (
	testRegistry = 2
	testCallback = 3
)

type fakeCompositor struct {
	conn net.Conn
}

func newTestSession(t *testing.T) (*Session, *fakeCompositor) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	s, err := NewSession(NewConn(client))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, &fakeCompositor{conn: server}
}

func (c *fakeCompositor) read() (Message, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return Message{}, err
	}
	object, opcode, size := parseHeader(header[:])
	body := make([]byte, size-headerSize)
	if _, err := io.ReadFull(c.conn, body); err != nil {
		return Message{}, err
	}
	return Message{Object: object, Opcode: opcode, Body: body}, nil
}

func (c *fakeCompositor) readN(n int) ([]Message, error) {
	var msgs []Message
	for i := 0; i < n; i++ {
		m, err := c.read()
		if err != nil {
			return msgs, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// send writes all events in a single write so the client sees one batch
func (c *fakeCompositor) send(events ...Message) error {
	var buf []byte
	for _, e := range events {
		data, err := e.Encode()
		if err != nil {
			return err
		}
		buf = append(buf, data...)
	}
	_, err := c.conn.Write(buf)
	return err
}

func async(fn func() error) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- fn() }()
	return ch
}

func wait(t *testing.T, ch <-chan error) {
	t.Helper()
	select {
	case err := <-ch:
		if err != nil {
			t.Fatalf("compositor: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("compositor timed out")
	}
}

func globalEvent(name uint32, iface string, version uint32) Message {
	return NewRequest(testRegistry, registryEventGlobal).Uint(name).Str(iface).Uint(version).Message()
}

func syncDone(callback uint32) []Message {
	return []Message{
		NewRequest(callback, callbackEventDone).Uint(1).Message(),
		NewRequest(displayID, displayEventDeleteID).Uint(callback).Message(),
	}
}

// discover performs the initial roundtrip announcing an output, the CTM
// manager and the toplevel manager
func discover(t *testing.T, s *Session, c *fakeCompositor) ([]notify.Notification, []Message) {
	t.Helper()
	var requests []Message
	ch := async(func() error {
		msgs, err := c.readN(2)
		if err != nil {
			return err
		}
		requests = msgs
		events := []Message{
			globalEvent(10, notify.InterfaceOutput, 4),
			globalEvent(11, notify.InterfaceCTMManager, 1),
			globalEvent(12, notify.InterfaceToplevelManager, 3),
		}
		return c.send(append(events, syncDone(testCallback)...)...)
	})

	batch, err := s.Roundtrip()
	if err != nil {
		t.Fatalf("roundtrip: %v", err)
	}
	wait(t, ch)
	return batch, requests
}

func TestRoundtrip_AnnouncesGlobals(t *testing.T) {
	s, c := newTestSession(t)
	batch, requests := discover(t, s, c)

	if requests[0].Object != displayID || requests[0].Opcode != displayGetRegistry {
		t.Fatalf("expected get_registry first, got %+v", requests[0])
	}
	if requests[1].Object != displayID || requests[1].Opcode != displaySync {
		t.Fatalf("expected sync second, got %+v", requests[1])
	}

	want := []notify.Notification{
		notify.GlobalAnnounced{Global: notify.Global{Name: 10, Interface: notify.InterfaceOutput, Version: 4}},
		notify.GlobalAnnounced{Global: notify.Global{Name: 11, Interface: notify.InterfaceCTMManager, Version: 1}},
		notify.GlobalAnnounced{Global: notify.Global{Name: 12, Interface: notify.InterfaceToplevelManager, Version: 3}},
	}
	if !reflect.DeepEqual(batch, want) {
		t.Fatalf("expected %+v, got %+v", want, batch)
	}
	if _, ok := s.objects[testCallback]; ok {
		t.Fatalf("callback object must be released after done")
	}
}

func TestSession_BindAndToplevelEvents(t *testing.T) {
	s, c := newTestSession(t)
	discover(t, s, c)

	out, err := s.BindDisplay(notify.Global{Name: 10, Interface: notify.InterfaceOutput, Version: 4})
	if err != nil {
		t.Fatalf("bind output: %v", err)
	}
	if _, err := s.BindTransformControl(notify.Global{Name: 11, Interface: notify.InterfaceCTMManager, Version: 1}); err != nil {
		t.Fatalf("bind ctm: %v", err)
	}

	var binds []Message
	ch := async(func() error {
		msgs, err := c.readN(3)
		binds = msgs
		return err
	})
	if err := s.BindWindowManager(notify.Global{Name: 12, Interface: notify.InterfaceToplevelManager, Version: 9}); err != nil {
		t.Fatalf("bind toplevel manager: %v", err)
	}
	wait(t, ch)

	type bind struct {
		name    uint32
		iface   string
		version uint32
		id      uint32
	}
	var got []bind
	for _, m := range binds {
		if m.Object != testRegistry || m.Opcode != registryBind {
			t.Fatalf("expected registry bind, got %+v", m)
		}
		r := NewArgReader(m.Body)
		b := bind{name: r.Uint(), iface: r.Str(), version: r.Uint(), id: r.Uint()}
		if r.Err() != nil {
			t.Fatalf("decode bind: %v", r.Err())
		}
		got = append(got, b)
	}
	want := []bind{
		{name: 10, iface: notify.InterfaceOutput, version: 4, id: 4},
		{name: 11, iface: notify.InterfaceCTMManager, version: 1, id: 5},
		{name: 12, iface: notify.InterfaceToplevelManager, version: toplevelManagerVersion, id: 6},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected binds %+v, got %+v", want, got)
	}
	if out != display.ID(4) {
		t.Fatalf("expected display id 4, got %d", out)
	}

	const toplevel = firstServerID
	states := NewRequest(0, 0).Uint(0).Uint(toplevelStateActivated).Message().Body
	ch = async(func() error {
		return c.send(
			NewRequest(4, outputEventName).Str("DP-1").Message(),
			NewRequest(6, toplevelManagerEventToplevel).Object(toplevel).Message(),
			NewRequest(toplevel, toplevelEventTitle).Str("Terminal").Message(),
			NewRequest(toplevel, toplevelEventAppID).Str("foot").Message(),
			NewRequest(toplevel, toplevelEventOutputEnter).Object(4).Message(),
			NewRequest(toplevel, toplevelEventState).Array(states).Message(),
			NewRequest(toplevel, toplevelEventDone).Message(),
		)
	})
	batch, err := s.NextBatch()
	if err != nil {
		t.Fatalf("next batch: %v", err)
	}
	wait(t, ch)

	h := window.Handle(toplevel)
	wantBatch := []notify.Notification{
		notify.DisplayNamed{Display: 4, Name: "DP-1"},
		notify.WindowAppeared{Window: h},
		notify.TitleChanged{Window: h, Title: "Terminal"},
		notify.AppIDChanged{Window: h, AppID: "foot"},
		notify.EnteredDisplay{Window: h, Display: 4},
		notify.ActivationChanged{Window: h, Active: true},
	}
	if !reflect.DeepEqual(batch, wantBatch) {
		t.Fatalf("expected %+v, got %+v", wantBatch, batch)
	}

	// Closing releases the handle with a destroy request.
	ch = async(func() error {
		return c.send(
			NewRequest(toplevel, toplevelEventState).Array(nil).Message(),
			NewRequest(toplevel, toplevelEventClosed).Message(),
		)
	})
	batch, err = s.NextBatch()
	if err != nil {
		t.Fatalf("next batch: %v", err)
	}
	wait(t, ch)
	wantBatch = []notify.Notification{
		notify.ActivationChanged{Window: h, Active: false},
		notify.WindowClosed{Window: h},
	}
	if !reflect.DeepEqual(batch, wantBatch) {
		t.Fatalf("expected %+v, got %+v", wantBatch, batch)
	}
	if _, ok := s.objects[toplevel]; ok {
		t.Fatalf("closed toplevel must be forgotten")
	}

	var destroy Message
	ch = async(func() error {
		m, err := c.read()
		destroy = m
		return err
	})
	if err := s.conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	wait(t, ch)
	if destroy.Object != toplevel || destroy.Opcode != toplevelDestroy {
		t.Fatalf("expected destroy request, got %+v", destroy)
	}
}

func TestSession_IgnoresEventsForUnknownObjects(t *testing.T) {
	s, c := newTestSession(t)
	discover(t, s, c)

	ch := async(func() error {
		return c.send(
			NewRequest(0xff000099, toplevelEventTitle).Str("gone").Message(),
			globalEvent(20, "wl_seat", 7),
		)
	})
	batch, err := s.NextBatch()
	if err != nil {
		t.Fatalf("next batch: %v", err)
	}
	wait(t, ch)

	want := []notify.Notification{
		notify.GlobalAnnounced{Global: notify.Global{Name: 20, Interface: "wl_seat", Version: 7}},
	}
	if !reflect.DeepEqual(batch, want) {
		t.Fatalf("expected %+v, got %+v", want, batch)
	}
}

func TestSession_NextBatchWaitsPastBookkeepingEvents(t *testing.T) {
	s, c := newTestSession(t)
	discover(t, s, c)

	ch := async(func() error {
		// A lone delete_id decodes to nothing and must not end the batch.
		if err := c.send(NewRequest(displayID, displayEventDeleteID).Uint(testCallback).Message()); err != nil {
			return err
		}
		return c.send(
			globalEvent(20, "wl_seat", 7),
			globalEvent(21, "wl_shm", 1),
		)
	})
	batch, err := s.NextBatch()
	if err != nil {
		t.Fatalf("next batch: %v", err)
	}
	wait(t, ch)

	want := []notify.Notification{
		notify.GlobalAnnounced{Global: notify.Global{Name: 20, Interface: "wl_seat", Version: 7}},
		notify.GlobalAnnounced{Global: notify.Global{Name: 21, Interface: "wl_shm", Version: 1}},
	}
	if !reflect.DeepEqual(batch, want) {
		t.Fatalf("expected %+v, got %+v", want, batch)
	}
	if n := s.conn.Buffered(); n != 0 {
		t.Fatalf("expected the batch to drain the buffer, %d bytes left", n)
	}
}

func TestSession_ProtocolError(t *testing.T) {
	s, c := newTestSession(t)
	discover(t, s, c)

	ch := async(func() error {
		return c.send(NewRequest(displayID, displayEventError).Object(testRegistry).Uint(1).Str("invalid global").Message())
	})
	_, err := s.NextBatch()
	wait(t, ch)

	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if pe.Interface != "wl_registry" || pe.Code != 1 || pe.Message != "invalid global" {
		t.Fatalf("unexpected protocol error %+v", pe)
	}
}

func TestSession_BlockedTransforms(t *testing.T) {
	s, c := newTestSession(t)
	discover(t, s, c)
	if _, err := s.BindTransformControl(notify.Global{Name: 11, Interface: notify.InterfaceCTMManager, Version: 2}); err != nil {
		t.Fatalf("bind: %v", err)
	}

	ch := async(func() error {
		if _, err := c.read(); err != nil {
			return err
		}
		return c.send(NewRequest(4, ctmEventBlocked).Message())
	})
	batch, err := s.NextBatch()
	if err != nil {
		t.Fatalf("next batch: %v", err)
	}
	wait(t, ch)
	if !reflect.DeepEqual(batch, []notify.Notification{notify.TransformBlocked{}}) {
		t.Fatalf("expected TransformBlocked, got %+v", batch)
	}
}

func TestTransformControl_Commands(t *testing.T) {
	s, c := newTestSession(t)
	tc := &TransformControl{conn: s.conn, id: 5}

	var msgs []Message
	ch := async(func() error {
		// get_registry is still queued from NewSession.
		m, err := c.readN(4)
		msgs = m
		return err
	})
	if err := tc.SetLinearTransform(4, ctm.Saturation(0)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := tc.ClearTransform(7); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := tc.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	wait(t, ch)

	decode := func(m Message) (uint32, []int32) {
		r := NewArgReader(m.Body)
		out := r.Object()
		var coeffs []int32
		for i := 0; i < 9; i++ {
			coeffs = append(coeffs, r.Int())
		}
		if r.Err() != nil {
			t.Fatalf("decode: %v", r.Err())
		}
		return out, coeffs
	}

	set, clear, commit := msgs[1], msgs[2], msgs[3]
	if set.Object != 5 || set.Opcode != ctmSetForOutput {
		t.Fatalf("unexpected set request %+v", set)
	}
	out, coeffs := decode(set)
	if out != 4 {
		t.Fatalf("expected output 4, got %d", out)
	}
	for i, v := range coeffs {
		if v != 85 {
			t.Fatalf("coefficient %d: expected 85, got %d", i, v)
		}
	}

	out, coeffs = decode(clear)
	if out != 7 {
		t.Fatalf("expected output 7, got %d", out)
	}
	want := []int32{256, 0, 0, 0, 256, 0, 0, 0, 256}
	if !reflect.DeepEqual(coeffs, want) {
		t.Fatalf("expected identity %v, got %v", want, coeffs)
	}

	if commit.Object != 5 || commit.Opcode != ctmCommit || len(commit.Body) != 0 {
		t.Fatalf("unexpected commit request %+v", commit)
	}
}

func TestSession_Interrupt(t *testing.T) {
	s, c := newTestSession(t)
	// Drain the queued get_registry so the flush does not block.
	go io.Copy(io.Discard, c.conn)

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.Interrupt()
	}()

	_, err := s.NextBatch()
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "wayland-1")

	tests := []struct {
		name string
		want string
	}{
		{name: "", want: "/run/user/1000/wayland-1"},
		{name: "wayland-5", want: "/run/user/1000/wayland-5"},
		{name: "/tmp/wl.sock", want: "/tmp/wl.sock"},
	}
	for _, tt := range tests {
		got, err := SocketPath(tt.name)
		if err != nil || got != tt.want {
			t.Fatalf("SocketPath(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
		}
	}

	t.Setenv("XDG_RUNTIME_DIR", "")
	if _, err := SocketPath("wayland-0"); err == nil {
		t.Fatalf("expected error without XDG_RUNTIME_DIR")
	}
}

func ExampleFixedFromFloat() {
	fmt.Println(FixedFromFloat(ctm.Saturation(3.3)[0]))
	// Output: 649
}
