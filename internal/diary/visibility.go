package diary

import "github.com/and161185/lovary/internal/model"

// RevealToday applies the mutual-reveal rule for the current day: the partner's
// entry is shown only once the viewer has written their own. The result is
// the partner entry to expose, or nil.
func RevealToday(own, partner *model.Entry) *model.Entry {
	if own == nil || partner == nil {
		return nil
	}
	return partner
}

// NeedsRevealMark reports whether exposing e should persist the revealed flag.
func NeedsRevealMark(e *model.Entry) bool {
	return e != nil && !e.Revealed
}
