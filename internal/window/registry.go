package window

import (
	"fmt"

	"github.com/bryanchriswhite/FocusVibrance/internal/display"
)

// Handle identifies a toplevel window for the lifetime of the connection
type Handle uint32

func (h Handle) String() string {
	return fmt.Sprintf("toplevel-%d", uint32(h))
}

// Window represents a toplevel announced by the compositor
type Window struct {
	Handle   Handle       `json:"handle"`
	Title    string       `json:"title"`
	HasTitle bool         `json:"has_title"`
	AppID    string       `json:"app_id,omitempty"`
	Displays []display.ID `json:"displays"`
}

// Label formats the window for log lines
func (w *Window) Label() string {
	title := "<no title>"
	if w.HasTitle {
		title = w.Title
	}
	return fmt.Sprintf("<%d>[%s]", uint32(w.Handle), title)
}

// OnDisplay reports whether the window currently occupies d
func (w *Window) OnDisplay(d display.ID) bool {
	for _, existing := range w.Displays {
		if existing == d {
			return true
		}
	}
	return false
}

func (w *Window) clone() Window {
	c := *w
	c.Displays = make([]display.ID, len(w.Displays))
	copy(c.Displays, w.Displays)
	return c
}

// Registry tracks known windows in creation order.
//
// Events about a toplevel can arrive before the toplevel itself is announced,
// so every mutation creates the window on first mention.
type Registry struct {
	windows []*Window
}

// NewRegistry creates an empty window registry
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) index(h Handle) int {
	for i, w := range r.windows {
		if w.Handle == h {
			return i
		}
	}
	return -1
}

// GetOrCreate returns the window for h, creating it if needed
func (r *Registry) GetOrCreate(h Handle) *Window {
	if i := r.index(h); i >= 0 {
		return r.windows[i]
	}
	w := &Window{Handle: h}
	r.windows = append(r.windows, w)
	return w
}

// SetTitle overwrites the title of h
func (r *Registry) SetTitle(h Handle, title string) *Window {
	w := r.GetOrCreate(h)
	w.Title = title
	w.HasTitle = true
	return w
}

// SetAppID overwrites the application id of h
func (r *Registry) SetAppID(h Handle, appID string) *Window {
	w := r.GetOrCreate(h)
	w.AppID = appID
	return w
}

// AddDisplay records that h entered d. Entering a display twice is a no-op.
func (r *Registry) AddDisplay(h Handle, d display.ID) *Window {
	w := r.GetOrCreate(h)
	if !w.OnDisplay(d) {
		w.Displays = append(w.Displays, d)
	}
	return w
}

// RemoveDisplay records that h left d. Leaving a display that was never
// entered is tolerated.
func (r *Registry) RemoveDisplay(h Handle, d display.ID) *Window {
	w := r.GetOrCreate(h)
	for i, existing := range w.Displays {
		if existing == d {
			w.Displays = append(w.Displays[:i], w.Displays[i+1:]...)
			break
		}
	}
	return w
}

// Remove deletes h and reports whether it existed
func (r *Registry) Remove(h Handle) bool {
	i := r.index(h)
	if i < 0 {
		return false
	}
	r.windows = append(r.windows[:i], r.windows[i+1:]...)
	return true
}

// Find returns the window for h or nil
func (r *Registry) Find(h Handle) *Window {
	if i := r.index(h); i >= 0 {
		return r.windows[i]
	}
	return nil
}

// List returns copies of all windows in creation order
func (r *Registry) List() []Window {
	out := make([]Window, 0, len(r.windows))
	for _, w := range r.windows {
		out = append(out, w.clone())
	}
	return out
}

// Len returns the number of tracked windows
func (r *Registry) Len() int {
	return len(r.windows)
}
