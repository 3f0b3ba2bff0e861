// Package viewstate holds the per-page state helpers: stale response
// guarding, search debouncing and optimistic row tables.
package viewstate

import "sync"

// Token identifies one in-flight request.
type Token uint64

// Guard discards responses that arrive after a newer request started or after
// the page was closed.
type Guard struct {
	mu     sync.Mutex
	gen    uint64
	closed bool
}

// Begin starts a request and returns its token. Earlier tokens become stale.
func (g *Guard) Begin() Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	return Token(g.gen)
}

// Current reports whether t is the latest token of an open page.
func (g *Guard) Current(t Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.closed && uint64(t) == g.gen
}

// Commit runs apply only when t is still current. The check and apply happen
// under the guard lock, so a concurrent Close cannot interleave.
func (g *Guard) Commit(t Token, apply func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || uint64(t) != g.gen {
		return false
	}
	apply()
	return true
}

// Close marks the page torn down; every outstanding token becomes stale.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

// Closed reports whether Close was called.
func (g *Guard) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}
