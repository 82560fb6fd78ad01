// Package pagecache stores rendered pages per user and invalidates them through an
// explicit set of targets derived from the deck/card relationship.
package pagecache

import "strconv"

// Target is the path of a cacheable page.
type Target string

// Dashboard is the deck list page.
func Dashboard() Target { return "/dashboard" }

// Deck is the deck detail page.
func Deck(id int64) Target { return Target("/decks/" + strconv.FormatInt(id, 10)) }

// Study is the initial study page of a deck.
func Study(id int64) Target { return Target("/decks/" + strconv.FormatInt(id, 10) + "/study") }

// ForCardChange lists the pages showing a card of deckID or the deck's card count and
// last-updated time.
func ForCardChange(deckID int64) []Target {
	return []Target{Deck(deckID), Study(deckID), Dashboard()}
}

// ForDeckChange lists the pages showing deck deckID (edit or delete).
func ForDeckChange(deckID int64) []Target {
	return []Target{Deck(deckID), Study(deckID), Dashboard()}
}

// ForDeckCreate lists the pages that change when a deck is added.
func ForDeckCreate() []Target {
	return []Target{Dashboard()}
}
