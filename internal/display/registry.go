package display

import (
	"fmt"

	"github.com/bryanchriswhite/FocusVibrance/internal/logger"
)

// ID identifies a bound compositor output. It is the client-side object id
// and stays stable for the lifetime of the connection.
type ID uint32

func (id ID) String() string {
	return fmt.Sprintf("output-%d", uint32(id))
}

// Display represents a physical output announced by the compositor
type Display struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Registry tracks known displays in announcement order
type Registry struct {
	displays []Display
}

// NewRegistry creates an empty display registry
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) index(id ID) int {
	for i := range r.displays {
		if r.displays[i].ID == id {
			return i
		}
	}
	return -1
}

// Register records a display. Registering a known id again only updates its
// name, and only when the new name is non-empty.
func (r *Registry) Register(id ID, name string) {
	if i := r.index(id); i >= 0 {
		if name != "" && r.displays[i].Name != name {
			r.displays[i].Name = name
			logger.WithComponent("display").Debug().
				Uint32("display", uint32(id)).
				Str("name", name).
				Msg("Display renamed")
		}
		return
	}

	r.displays = append(r.displays, Display{ID: id, Name: name})
	logger.WithComponent("display").Debug().
		Uint32("display", uint32(id)).
		Str("name", name).
		Msg("Display registered")
}

// Describe sets the human readable description of a display
func (r *Registry) Describe(id ID, description string) {
	if i := r.index(id); i >= 0 {
		r.displays[i].Description = description
		return
	}
	r.displays = append(r.displays, Display{ID: id, Description: description})
}

// Known reports whether id has been registered
func (r *Registry) Known(id ID) bool {
	return r.index(id) >= 0
}

// Name returns a label for logs, falling back to the id
func (r *Registry) Name(id ID) string {
	if i := r.index(id); i >= 0 && r.displays[i].Name != "" {
		return r.displays[i].Name
	}
	return id.String()
}

// Names maps ids to labels
func (r *Registry) Names(ids []ID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, r.Name(id))
	}
	return names
}

// List returns a copy of all registered displays
func (r *Registry) List() []Display {
	out := make([]Display, len(r.displays))
	copy(out, r.displays)
	return out
}

// Len returns the number of registered displays
func (r *Registry) Len() int {
	return len(r.displays)
}
