package domain

// Action is a reviewer decision or navigation request.
type Action string

const (
	ActionAccept         Action = "accept"
	ActionReject         Action = "reject"
	ActionNextTerm       Action = "next-term"
	ActionPrevTerm       Action = "prev-term"
	ActionPrevious       Action = "previous"
	ActionSwitchProvider Action = "switch-provider"
)

// Decision is an action plus its argument (only switch-provider takes one).
type Decision struct {
	Action   Action
	Provider ProviderTag
}

// Cursor is the review position. TermIndex == len(terms) means the session is finished.
type Cursor struct {
	TermIndex  int
	PhotoIndex int
	Provider   ProviderTag
}

// Position is what the reviewer currently sees.
type Position struct {
	Finished        bool
	Term            Term
	TermIndex       int
	TermCount       int
	PhotoIndex      int
	PhotoCount      int
	Photo           *PhotoDescriptor // nil when the term is exhausted
	URL             string
	AcceptedForTerm int
	AcceptedTotal   int
	Provider        ProviderTag
}

// Exhausted reports a valid term with nothing left to show.
func (p Position) Exhausted() bool {
	return !p.Finished && p.Photo == nil
}
