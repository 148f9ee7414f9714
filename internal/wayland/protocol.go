package wayland

import "github.com/bryanchriswhite/FocusVibrance/internal/notify"

// displayID is the fixed object id of wl_display
const displayID = 1

// firstServerID is where object ids allocated by the compositor start
const firstServerID = 0xff000000

// Highest interface versions this client understands
const (
	outputVersion          = 4
	toplevelManagerVersion = 3
	ctmManagerVersion      = 2
)

// wl_display
const (
	displaySync        = 0
	displayGetRegistry = 1

	displayEventError    = 0
	displayEventDeleteID = 1
)

// wl_registry
const (
	registryBind = 0

	registryEventGlobal       = 0
	registryEventGlobalRemove = 1
)

// wl_callback
const callbackEventDone = 0

// wl_output
const (
	outputEventName        = 4
	outputEventDescription = 5
)

// zwlr_foreign_toplevel_manager_v1
const (
	toplevelManagerEventToplevel = 0
	toplevelManagerEventFinished = 1
)

// zwlr_foreign_toplevel_handle_v1
const (
	toplevelDestroy = 7

	toplevelEventTitle       = 0
	toplevelEventAppID       = 1
	toplevelEventOutputEnter = 2
	toplevelEventOutputLeave = 3
	toplevelEventState       = 4
	toplevelEventDone        = 5
	toplevelEventClosed      = 6

	toplevelStateActivated = 2
)

// hyprland_ctm_control_manager_v1
const (
	ctmSetForOutput = 0
	ctmCommit       = 1

	ctmEventBlocked = 0
)

// objectKind tells the session how to decode events for an object id
type objectKind int

const (
	kindDisplay objectKind = iota
	kindRegistry
	kindCallback
	kindOutput
	kindToplevelManager
	kindToplevel
	kindCTMManager
)

var kindNames = map[objectKind]string{
	kindDisplay:         "wl_display",
	kindRegistry:        "wl_registry",
	kindCallback:        "wl_callback",
	kindOutput:          notify.InterfaceOutput,
	kindToplevelManager: notify.InterfaceToplevelManager,
	kindToplevel:        "zwlr_foreign_toplevel_handle_v1",
	kindCTMManager:      notify.InterfaceCTMManager,
}

func (k objectKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}
