package camera

// Device describes the input capabilities reported by the viewer, in the
// form of the "(pointer: coarse)" and "(hover: none)" media queries.
type Device struct {
	PointerCoarse bool `json:"pointerCoarse"`
	HoverNone     bool `json:"hoverNone"`
}

// Touch reports whether the device should get touch gestures: pinch zoom
// instead of modified wheel zoom.
func (d Device) Touch() bool {
	return d.PointerCoarse || d.HoverNone
}
