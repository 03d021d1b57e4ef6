package session

import (
	"polereview/internal/lookup"
	"polereview/internal/markup"
)

// PhotoEntry pairs an original photo with its optional burned markup copy and
// the annotations drawn since the last burn.
type PhotoEntry struct {
	Original       string
	MarkedUp       string
	PendingMarkups []markup.Pending
}

// Pole is the mutable review state for one discovered photo subfolder.
type Pole struct {
	ID        string
	Position  int
	Reviewed  bool
	Notes     string
	Checklist map[string]bool
	Photos    []PhotoEntry
	Lookup    []lookup.Record
}

// Flagged reports whether the pole carries anything a reviewer called out: a
// failed checklist item, a markup, a note, or a PN/DR lookup match.
func (p *Pole) Flagged() bool {
	if p == nil {
		return false
	}
	for _, ok := range p.Checklist {
		if !ok {
			return true
		}
	}
	for _, photo := range p.Photos {
		if photo.MarkedUp != "" || len(photo.PendingMarkups) > 0 {
			return true
		}
	}
	if p.Notes != "" {
		return true
	}
	for _, rec := range p.Lookup {
		if rec.Type != lookup.TypeNA {
			return true
		}
	}
	return false
}

// Meta is the session-wide context saved alongside the per-pole state.
type Meta struct {
	OriginalRoot string
	Sources      lookup.Sources
}
