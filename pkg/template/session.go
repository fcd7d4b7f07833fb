package template

import "sync"

// Session enforces the single-live-document lifecycle: at most one Document
// exists at a time, replaced wholesale on load and discarded on clear. The
// generation counter lets form bindings detect that the document they were
// built against is gone.
type Session struct {
	mu  sync.Mutex
	doc *Document
	gen uint64
}

// NewSession returns an empty session at generation zero.
func NewSession() *Session {
	return &Session{}
}

// Replace installs a new document, invalidating everything bound to the
// previous one. It returns the new generation.
func (s *Session) Replace(doc *Document) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.gen++
	return s.gen
}

// Clear discards the current document, if any.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return
	}
	s.doc = nil
	s.gen++
}

// Current returns the live document and the generation it belongs to. The
// document is nil when nothing is loaded.
func (s *Session) Current() (*Document, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, s.gen
}

// Generation reports the current generation without the document.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}
