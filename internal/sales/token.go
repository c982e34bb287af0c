package sales

import "sync"

// RequestSeq hands out monotonically increasing tokens for one resource.
// A response is applied only while its token is still the latest issued;
// anything older was superseded and must be dropped.
type RequestSeq struct {
	mu   sync.Mutex
	last uint64
}

// Next issues a new token, superseding every earlier one.
func (s *RequestSeq) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// Current reports whether tok is the latest token issued.
func (s *RequestSeq) Current(tok uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tok == s.last
}

// Invalidate supersedes every outstanding token without issuing a request.
func (s *RequestSeq) Invalidate() {
	s.mu.Lock()
	s.last++
	s.mu.Unlock()
}
