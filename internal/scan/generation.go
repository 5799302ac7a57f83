package scan

import "sync/atomic"

// Generation is the monotonically increasing scan counter. The value it holds
// is the active generation; any token minted for an older value is stale.
type Generation struct {
	active atomic.Uint64
}

// Token identifies one scan attempt.
type Token struct {
	gen *Generation
	id  uint64
}

// Next starts a new generation, which immediately makes every earlier token stale.
func (g *Generation) Next() Token {
	return Token{gen: g, id: g.active.Add(1)}
}

// Current returns the active generation number.
func (g *Generation) Current() uint64 {
	return g.active.Load()
}

// Supersede bumps the active generation without starting a scan.
func (g *Generation) Supersede() {
	g.active.Add(1)
}

// ID returns the generation number the token was minted for.
func (t Token) ID() uint64 {
	return t.id
}

// Valid reports whether no newer generation has been started. The zero token
// is never valid.
func (t Token) Valid() bool {
	return t.gen != nil && t.gen.active.Load() == t.id
}
