package ats

import "sort"

// History is a candidate's status log in insertion order.
type History []StatusEntry

// Append returns a new history with entry added at the end. The receiver is
// left untouched and the result never shares its backing array.
func (h History) Append(entry StatusEntry) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, entry)
}

// Latest returns the entry with the greatest date. Entries are compared by
// date rather than position; on equal dates the later-inserted one wins.
func (h History) Latest() (StatusEntry, bool) {
	if len(h) == 0 {
		return StatusEntry{}, false
	}
	best := 0
	for i := 1; i < len(h); i++ {
		if !h[i].Date.Before(h[best].Date) {
			best = i
		}
	}
	return h[best], true
}

// Chronological returns a copy sorted oldest first. Equal dates keep
// insertion order.
func (h History) Chronological() History {
	out := make(History, len(h))
	copy(out, h)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// NewestFirst returns a copy sorted newest first, the order a timeline is
// read in.
func (h History) NewestFirst() History {
	out := h.Chronological()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
