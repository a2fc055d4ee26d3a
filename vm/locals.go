package vm

// localsAlloc extends the locals stack by n zero slots, reserving a frame
// for a method about to run.
func (i *Instance) localsAlloc(n int) {
	i.locals = append(i.locals, make([]slot, n)...)
}

// localsFree releases the last n slots, matching free_locals. Invoke calls
// this on every return path, including error returns, so a method that
// fails partway through still leaves the locals stack balanced for its
// caller.
func (i *Instance) localsFree(n int) {
	i.locals = i.locals[:len(i.locals)-n]
}

// storeLocal writes slot idx of the *current* frame: idx is measured from
// the top of the locals stack downward, so idx=0 is the most recently
// reserved slot.
func (i *Instance) storeLocal(idx int, v slot) {
	i.locals[len(i.locals)-1-idx] = v
}

// loadLocal reads slot idx of the current frame.
func (i *Instance) loadLocal(idx int) slot {
	return i.locals[len(i.locals)-1-idx]
}
