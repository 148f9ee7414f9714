package diff

import (
	"reflect"
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		previous  []int
		desired   []int
		removed   []int
		unchanged []int
		added     []int
	}{
		{name: "both empty"},
		{name: "from empty", desired: []int{1}, added: []int{1}},
		{name: "to empty", previous: []int{1}, removed: []int{1}},
		{name: "grow", previous: []int{1}, desired: []int{1, 2}, unchanged: []int{1}, added: []int{2}},
		{name: "swap", previous: []int{1, 2}, desired: []int{3, 2}, removed: []int{1}, unchanged: []int{2}, added: []int{3}},
		{name: "order kept", previous: []int{5, 4, 3}, desired: []int{1, 3, 5, 2}, removed: []int{4}, unchanged: []int{5, 3}, added: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			removed, unchanged, added := Compute(tt.previous, tt.desired)
			if !reflect.DeepEqual(removed, tt.removed) {
				t.Fatalf("removed: expected %v, got %v", tt.removed, removed)
			}
			if !reflect.DeepEqual(unchanged, tt.unchanged) {
				t.Fatalf("unchanged: expected %v, got %v", tt.unchanged, unchanged)
			}
			if !reflect.DeepEqual(added, tt.added) {
				t.Fatalf("added: expected %v, got %v", tt.added, added)
			}
		})
	}
}

func TestCompute_SameInputIsNoop(t *testing.T) {
	p := []string{"DP-1", "HDMI-A-1", "eDP-1"}
	removed, unchanged, added := Compute(p, p)
	if len(removed) != 0 || len(added) != 0 {
		t.Fatalf("expected no changes, got removed=%v added=%v", removed, added)
	}
	if !reflect.DeepEqual(unchanged, p) {
		t.Fatalf("expected unchanged %v, got %v", p, unchanged)
	}
	if Changed(removed, added) {
		t.Fatalf("expected Changed to be false")
	}
}

func TestCompute_PartitionProperties(t *testing.T) {
	cases := [][2][]int{
		{{1, 2, 3}, {3, 4}},
		{{}, {7, 8}},
		{{9}, {}},
		{{1, 2, 3, 4}, {4, 3, 2, 1}},
		{{10, 20}, {30, 40, 10}},
	}

	for _, c := range cases {
		previous, desired := c[0], c[1]
		removed, unchanged, added := Compute(previous, desired)

		// removed and unchanged partition previous.
		if len(removed)+len(unchanged) != len(previous) {
			t.Fatalf("%v/%v: removed+unchanged does not cover previous", previous, desired)
		}
		for _, r := range removed {
			if contains(unchanged, r) || contains(desired, r) {
				t.Fatalf("%v/%v: removed element %d leaked", previous, desired, r)
			}
		}

		// unchanged and added cover desired.
		if len(unchanged)+len(added) != len(desired) {
			t.Fatalf("%v/%v: unchanged+added does not cover desired", previous, desired)
		}

		// Applying removed then added to previous yields desired as a set.
		applied := make([]int, 0, len(previous))
		for _, p := range previous {
			if !contains(removed, p) {
				applied = append(applied, p)
			}
		}
		applied = append(applied, added...)
		if len(applied) != len(desired) {
			t.Fatalf("%v/%v: applied %v has wrong size", previous, desired, applied)
		}
		for _, d := range desired {
			if !contains(applied, d) {
				t.Fatalf("%v/%v: applied %v misses %d", previous, desired, applied, d)
			}
		}
	}
}

func TestCompute_DoesNotMutateInputs(t *testing.T) {
	previous := []int{1, 2, 3}
	desired := []int{2, 3, 4}
	_, unchanged, added := Compute(previous, desired)

	unchanged[0] = 99
	added[0] = 99
	if !reflect.DeepEqual(previous, []int{1, 2, 3}) || !reflect.DeepEqual(desired, []int{2, 3, 4}) {
		t.Fatalf("inputs were modified: %v %v", previous, desired)
	}
}
