package window

// FocusTracker remembers which window, if any, holds input focus.
//
// Activation overwrites the previous focus without waiting for its
// deactivation; this assumes the compositor never reports two windows as
// activated at the same time.
type FocusTracker struct {
	handle  Handle
	tracked bool
}

// NotifyActivationChanged applies an activated/deactivated state change.
// A deactivation for a window that is not the current focus is ignored so
// a late event cannot clear a newer focus.
func (f *FocusTracker) NotifyActivationChanged(h Handle, active bool) {
	if active {
		f.handle = h
		f.tracked = true
		return
	}
	if f.tracked && f.handle == h {
		f.Clear()
	}
}

// NotifyWindowRemoved drops the focus if it pointed at h
func (f *FocusTracker) NotifyWindowRemoved(h Handle) {
	if f.tracked && f.handle == h {
		f.Clear()
	}
}

// Handle returns the focused handle
func (f *FocusTracker) Handle() (Handle, bool) {
	return f.handle, f.tracked
}

// Clear forgets the focus
func (f *FocusTracker) Clear() {
	f.handle = 0
	f.tracked = false
}

// Current resolves the focus against reg. A focus that no longer resolves
// is cleared.
func (f *FocusTracker) Current(reg *Registry) *Window {
	if !f.tracked {
		return nil
	}
	w := reg.Find(f.handle)
	if w == nil {
		f.Clear()
	}
	return w
}
