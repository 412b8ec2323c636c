package attachments

// DragState tracks one reorder gesture. The zero value is idle.
type DragState struct {
	dragged int
	active  bool
}

func (d *DragState) Start(i int) {
	d.dragged = i
	d.active = true
}

func (d *DragState) Dragging() (int, bool) {
	return d.dragged, d.active
}

// Drop ends the gesture over target and reports the move to apply. ok is
// false when no drag was in progress or it was dropped where it started.
// The stored index is cleared either way.
func (d *DragState) Drop(target int) (from, to int, ok bool) {
	from, active := d.dragged, d.active
	d.End()
	if !active || from == target {
		return 0, 0, false
	}
	return from, target, true
}

// End cancels the gesture without a move.
func (d *DragState) End() {
	d.dragged = 0
	d.active = false
}
