package card

import (
	"crypto/rand"
	"errors"
	"fmt"
	mrand "math/rand/v2"
)

const (
	DeckSize              = 52
	DefaultCardsPerPlayer = 6
)

var (
	ErrInsufficientDeck      = errors.New("not enough cards in the deck")
	ErrInvalidCardsPerPlayer = errors.New("cards per player must be positive")
)

// BuildDeck returns the 52 distinct cards, suit-major in canonical order.
func BuildDeck() Pile {
	deck := make(Pile, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{rank: r, suit: s})
		}
	}
	return deck
}

// Deal hands out cardsPerPlayer cards to every id, one card at a time in
// the order of ids, drawing from the top of deck. The deck is left
// untouched when it cannot cover every hand.
func Deal(deck *Pile, ids []string, cardsPerPlayer int) (map[string]Pile, error) {
	if cardsPerPlayer <= 0 {
		return nil, ErrInvalidCardsPerPlayer
	}
	if len(ids) == 0 {
		return map[string]Pile{}, nil
	}
	// Compare by division so huge requests cannot overflow the product.
	if cardsPerPlayer > deck.Size()/len(ids) {
		return nil, fmt.Errorf("%w: %d cards for %d players, have %d",
			ErrInsufficientDeck, cardsPerPlayer, len(ids), deck.Size())
	}
	total := cardsPerPlayer * len(ids)

	hands := make(map[string]Pile, len(ids))
	for _, id := range ids {
		hands[id] = make(Pile, 0, cardsPerPlayer)
	}

	for i := 0; i < total; i++ {
		c, err := deck.DrawTop()
		if err != nil {
			return nil, err
		}
		id := ids[i%len(ids)]
		hand := hands[id]
		hand.AddCard(c)
		hands[id] = hand
	}
	return hands, nil
}

// Dealer shuffles a fresh deck for every round. It is not safe for
// concurrent use; the hub loop is its only caller.
type Dealer struct {
	rng *mrand.Rand
}

func NewDealer(r *mrand.Rand) *Dealer {
	if r == nil {
		r = NewRandom()
	}
	return &Dealer{rng: r}
}

// NewRandom returns a ChaCha8 generator seeded from crypto/rand.
func NewRandom() *mrand.Rand {
	var seed [32]byte
	// crypto/rand.Read never fails since Go 1.24.
	_, _ = rand.Read(seed[:])
	return mrand.New(mrand.NewChaCha8(seed))
}

// DealRound builds, shuffles and deals a new deck to ids.
func (d *Dealer) DealRound(ids []string, cardsPerPlayer int) (map[string]Pile, error) {
	deck := BuildDeck()
	deck.Shuffle(d.rng)
	return Deal(&deck, ids, cardsPerPlayer)
}
