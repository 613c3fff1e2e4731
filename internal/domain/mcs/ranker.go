package mcs

import (
	"sync"
)

// HasClique reports whether candidate must be rejected against existing:
// it is smaller than some accepted member, or equal to one.
func HasClique(candidate *Correspondence, existing []*Correspondence) bool {
	for _, stored := range existing {
		if candidate.Size() < stored.Size() {
			return true
		}
		if candidate.Equals(stored) {
			return true
		}
	}
	return false
}

// IsCliquePresent reports whether existing holds a member equal to candidate.
// Relative size is ignored.
func IsCliquePresent(candidate *Correspondence, existing []*Correspondence) bool {
	for _, stored := range existing {
		if candidate.Equals(stored) {
			return true
		}
	}
	return false
}

// SortBySizeDesc stably sorts seeds by descending size.
func SortBySizeDesc(seeds []*Correspondence) {
	// insertion sort keeps ties in place and seed lists are short
	for i := 1; i < len(seeds); i++ {
		for j := i; j > 0 && seeds[j].Size() > seeds[j-1].Size(); j-- {
			seeds[j], seeds[j-1] = seeds[j-1], seeds[j]
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Ranker
// ─────────────────────────────────────────────────────────────────────────────

// Ranker owns the accepted solution set of one run.  The set only ever holds
// distinct correspondences of the largest size offered so far, in discovery
// order.  All methods are safe for concurrent use; readers get deep copies.
type Ranker struct {
	mu       sync.RWMutex
	accepted []*Correspondence
	best     int
}

// NewRanker returns an empty ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Offer submits candidate.  A strictly larger candidate clears the set and
// restarts accumulation at its size; a smaller or duplicate one is rejected.
// The ranker stores its own copy.
func (r *Ranker) Offer(candidate *Correspondence) bool {
	if candidate.IsEmpty() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offerLocked(candidate)
}

func (r *Ranker) offerLocked(candidate *Correspondence) bool {
	if candidate.Size() > r.best {
		r.accepted = r.accepted[:0]
		r.best = candidate.Size()
	}
	if HasClique(candidate, r.accepted) {
		return false
	}
	r.accepted = append(r.accepted, candidate.Clone())
	return true
}

// HasClique applies the Offer rejection rule without mutating the set.
func (r *Ranker) HasClique(candidate *Correspondence) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return HasClique(candidate, r.accepted)
}

// IsCliquePresent reports whether an equal correspondence was accepted.
func (r *Ranker) IsCliquePresent(candidate *Correspondence) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return IsCliquePresent(candidate, r.accepted)
}

// Snapshot returns deep copies of the accepted set in discovery order.
func (r *Ranker) Snapshot() []*Correspondence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Correspondence, len(r.accepted))
	for i, c := range r.accepted {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of accepted correspondences.
func (r *Ranker) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accepted)
}

// BestSize returns the size shared by every accepted correspondence, or 0.
func (r *Ranker) BestSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.accepted) == 0 {
		return 0
	}
	return r.best
}

// Reset empties the set.
func (r *Ranker) Reset() {
	r.mu.Lock()
	r.accepted = nil
	r.best = 0
	r.mu.Unlock()
}

// Replace atomically resets the set and offers every candidate in order.
// It returns the number accepted.
func (r *Ranker) Replace(candidates []*Correspondence) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accepted = nil
	r.best = 0
	for _, c := range candidates {
		if !c.IsEmpty() {
			r.offerLocked(c)
		}
	}
	return len(r.accepted)
}

//Personal.AI order the ending
