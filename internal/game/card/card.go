package card

import (
	"encoding/json"
	"fmt"
)

type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

type Rank uint8

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// Suits and Ranks are listed in canonical deck order.
var (
	Suits = []Suit{Spades, Hearts, Diamonds, Clubs}
	Ranks = []Rank{Ace, 2, 3, 4, 5, 6, 7, 8, 9, 10, Jack, Queen, King}
)

// Card is an immutable rank and suit pair. On the wire it is encoded as a
// single string such as "10♥" or "Q♠".
type Card struct {
	rank Rank
	suit Suit
}

func NewCard(rank Rank, suit Suit) (Card, error) {
	c := Card{rank: rank, suit: suit}

	validators := []cardValidator{
		validateRank,
		validateSuit,
	}

	for _, v := range validators {
		if err := v(c); err != nil {
			return Card{}, err
		}
	}

	return c, nil
}

func (c Card) Rank() Rank { return c.rank }
func (c Card) Suit() Suit { return c.suit }

func (c Card) String() string {
	return c.rank.String() + c.suit.String()
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return fmt.Sprintf("%d", r)
	}
}
