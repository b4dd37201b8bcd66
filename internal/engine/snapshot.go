package engine

import "skoll/internal/snapshot"

// SaveState dumps symbol's book and trigger store to dir, one JSON
// file per symbol.
func (e *Engine) SaveState(symbol, dir string) error {
	st := e.state(symbol)
	st.mu.Lock()
	doc := snapshot.Encode(st.book, st.triggers)
	st.mu.Unlock()
	return snapshot.Save(dir, doc)
}

// LoadState restores symbol's book and trigger store from dir,
// replacing the in-memory state atomically under the symbol's lock and
// then emitting a depth event. Returns false (a no-op) if no snapshot
// exists or it is malformed; the existing in-memory book is preserved.
func (e *Engine) LoadState(symbol, dir string) bool {
	doc, ok := snapshot.Load(dir, symbol)
	if !ok {
		return false
	}
	ob, triggers, err := snapshot.Decode(doc)
	if err != nil {
		return false
	}

	st := e.state(symbol)
	st.mu.Lock()
	st.book = ob
	st.triggers = triggers
	st.hasLastPrice = false
	e.emitDepthLocked(st, symbol)
	st.mu.Unlock()
	return true
}
