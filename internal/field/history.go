package field

// flowHistory is a fixed-depth ring of recent energy-flow frames, oldest
// evicted first. The original explorer layered these frames along a time
// axis for its 3D view.
type flowHistory struct {
	depth  int
	frames [][]float64
}

func newFlowHistory(depth int) *flowHistory {
	return &flowHistory{depth: depth}
}

func (h *flowHistory) push(frame []float64) {
	if h.depth <= 0 {
		return
	}
	if len(h.frames) == h.depth {
		copy(h.frames, h.frames[1:])
		h.frames[len(h.frames)-1] = frame
		return
	}
	h.frames = append(h.frames, frame)
}

// Frames returns the retained frames, oldest first. The backing arrays are
// the stored ones; callers must treat them as read-only.
func (h *flowHistory) Frames() [][]float64 {
	out := make([][]float64, len(h.frames))
	copy(out, h.frames)
	return out
}

func (h *flowHistory) clear() { h.frames = nil }
