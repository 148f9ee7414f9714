package display

import "testing"

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Register(3, "")
	r.Register(3, "DP-1")
	r.Register(3, "")
	r.Register(4, "HDMI-A-1")

	if r.Len() != 2 {
		t.Fatalf("expected 2 displays, got %d", r.Len())
	}
	if got := r.Name(3); got != "DP-1" {
		t.Fatalf("expected name DP-1, got %q", got)
	}
	list := r.List()
	if list[0].ID != 3 || list[1].ID != 4 {
		t.Fatalf("expected registration order [3 4], got %+v", list)
	}
}

func TestRegistry_NameFallsBackToID(t *testing.T) {
	r := NewRegistry()
	if got := r.Name(9); got != "output-9" {
		t.Fatalf("expected fallback label, got %q", got)
	}
	r.Register(9, "")
	if got := r.Name(9); got != "output-9" {
		t.Fatalf("expected fallback label for unnamed display, got %q", got)
	}
	if !r.Known(9) || r.Known(10) {
		t.Fatalf("unexpected Known results")
	}
}

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry()
	r.Register(1, "eDP-1")
	r.Describe(1, "Built-in panel")

	if got := r.List()[0].Description; got != "Built-in panel" {
		t.Fatalf("expected description, got %q", got)
	}

	names := r.Names([]ID{1, 2})
	if names[0] != "eDP-1" || names[1] != "output-2" {
		t.Fatalf("unexpected names %v", names)
	}
}
