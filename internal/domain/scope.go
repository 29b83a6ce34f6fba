package domain

// Scope restricts which flashcards are considered for review.
type Scope interface {
	isScope()
}

// DeckScope covers the cards of one deck.
type DeckScope struct{ DeckID string }

// TopicScope covers the cards of decks sharing the topic's parent.
type TopicScope struct{ TopicID string }

// AllScope covers every deck of a user.
type AllScope struct{ UserID string }

func (DeckScope) isScope()  {}
func (TopicScope) isScope() {}
func (AllScope) isScope()   {}
