package card

import (
	"fmt"
	"strings"
)

type cardValidator func(Card) error

func validateRank(c Card) error {
	if c.rank < Ace || c.rank > King {
		return fmt.Errorf("invalid card rank: %d (must be 1-13)", c.rank)
	}
	return nil
}

func validateSuit(c Card) error {
	if c.suit > Clubs {
		return fmt.Errorf("invalid card suit: %d", c.suit)
	}
	return nil
}

// Parse reads the "<rank><suit>" form produced by Card.String.
func Parse(s string) (Card, error) {
	for _, suit := range Suits {
		glyph := suit.String()
		if !strings.HasSuffix(s, glyph) {
			continue
		}
		rankStr := strings.TrimSuffix(s, glyph)
		for _, rank := range Ranks {
			if rank.String() == rankStr {
				return NewCard(rank, suit)
			}
		}
		return Card{}, fmt.Errorf("invalid card rank in %q", s)
	}
	return Card{}, fmt.Errorf("invalid card %q", s)
}
