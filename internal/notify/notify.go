// Package notify defines the compositor notifications consumed by the
// dispatch engine.
package notify

import (
	"github.com/bryanchriswhite/FocusVibrance/internal/display"
	"github.com/bryanchriswhite/FocusVibrance/internal/window"
)

// Interface names of the globals the engine binds
const (
	InterfaceOutput          = "wl_output"
	InterfaceToplevelManager = "zwlr_foreign_toplevel_manager_v1"
	InterfaceCTMManager      = "hyprland_ctm_control_manager_v1"
)

// Global is a capability announced through the compositor registry
type Global struct {
	Name      uint32 `json:"name"`
	Interface string `json:"interface"`
	Version   uint32 `json:"version"`
}

// Notification is one decoded compositor event
type Notification interface {
	notification()
}

// GlobalAnnounced reports a new registry global
type GlobalAnnounced struct {
	Global Global
}

// GlobalRemoved reports a registry global going away
type GlobalRemoved struct {
	Name uint32
}

// DisplayNamed carries the connector name of a bound output
type DisplayNamed struct {
	Display display.ID
	Name    string
}

// DisplayDescribed carries the human readable description of an output
type DisplayDescribed struct {
	Display     display.ID
	Description string
}

// WindowAppeared reports a new toplevel
type WindowAppeared struct {
	Window window.Handle
}

// TitleChanged carries a new toplevel title
type TitleChanged struct {
	Window window.Handle
	Title  string
}

// AppIDChanged carries a new toplevel application id
type AppIDChanged struct {
	Window window.Handle
	AppID  string
}

// EnteredDisplay reports a toplevel becoming visible on an output
type EnteredDisplay struct {
	Window  window.Handle
	Display display.ID
}

// LeftDisplay reports a toplevel leaving an output
type LeftDisplay struct {
	Window  window.Handle
	Display display.ID
}

// ActivationChanged reports whether a toplevel holds the activated state
type ActivationChanged struct {
	Window window.Handle
	Active bool
}

// WindowClosed reports a toplevel being unmapped for good
type WindowClosed struct {
	Window window.Handle
}

// TransformBlocked reports that another client already owns colour
// transforms, so requests from this client are ignored
type TransformBlocked struct{}

// WindowManagerFinished reports that no more toplevel events will be sent
type WindowManagerFinished struct{}

func (GlobalAnnounced) notification()       {}
func (GlobalRemoved) notification()         {}
func (DisplayNamed) notification()          {}
func (DisplayDescribed) notification()      {}
func (WindowAppeared) notification()        {}
func (TitleChanged) notification()          {}
func (AppIDChanged) notification()          {}
func (EnteredDisplay) notification()        {}
func (LeftDisplay) notification()           {}
func (ActivationChanged) notification()     {}
func (WindowClosed) notification()          {}
func (TransformBlocked) notification()      {}
func (WindowManagerFinished) notification() {}
