package notify

import "sync"

// Signal is a shared mutable revision cell. Bump marks that a mutation of
// the signal's kind happened; views compare Rev against the revision they
// last rendered to decide whether their cached list is stale.
//
// The granularity is deliberately coarse: any mutation of a given kind
// invalidates the whole relevant list, not just the affected entity.
type Signal struct {
	mu  sync.Mutex
	rev uint64
}

// Bump advances the revision.
func (s *Signal) Bump() {
	s.mu.Lock()
	s.rev++
	s.mu.Unlock()
}

// Rev returns the current revision. Zero means no mutation yet.
func (s *Signal) Rev() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// Signals groups one cell per mutation kind the views care about.
type Signals struct {
	PostAdded     Signal
	PostEdited    Signal
	PostLiked     Signal
	PostViewed    Signal
	FollowChanged Signal
}
