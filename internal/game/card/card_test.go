package card

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 1))
}

func TestBuildDeck(t *testing.T) {
	deck := BuildDeck()
	require.Len(t, deck, DeckSize)

	seen := make(map[Card]bool)
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	for _, s := range Suits {
		for _, r := range Ranks {
			assert.True(t, seen[Card{rank: r, suit: s}], "missing %s%s", r, s)
		}
	}

	assert.Equal(t, "A♠", deck[0].String())
	assert.Equal(t, "K♣", deck[DeckSize-1].String())
}

func TestNewCardValidation(t *testing.T) {
	_, err := NewCard(0, Spades)
	assert.Error(t, err)
	_, err = NewCard(14, Hearts)
	assert.Error(t, err)
	_, err = NewCard(King, Suit(4))
	assert.Error(t, err)

	c, err := NewCard(10, Hearts)
	require.NoError(t, err)
	assert.Equal(t, "10♥", c.String())
}

func TestParse(t *testing.T) {
	for _, c := range BuildDeck() {
		parsed, err := Parse(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	for _, bad := range []string{"", "1♠", "11♥", "A", "A?", "Z♣"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestCardJSON(t *testing.T) {
	hand := Pile{{rank: Ace, suit: Spades}, {rank: 10, suit: Diamonds}}
	data, err := json.Marshal(hand)
	require.NoError(t, err)
	assert.JSONEq(t, `["A♠","10♦"]`, string(data))

	var decoded Pile
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, hand, decoded)
}

func TestShuffleIsPermutation(t *testing.T) {
	deck := BuildDeck()
	deck.Shuffle(seeded(42))

	require.Len(t, deck, DeckSize)
	assert.ElementsMatch(t, BuildDeck(), deck)
	assert.NotEqual(t, BuildDeck(), deck)
}

func TestShuffleUniformOverSmallPile(t *testing.T) {
	const trials = 60000
	r := seeded(7)
	base := Pile{{rank: Ace, suit: Spades}, {rank: 2, suit: Spades}, {rank: 3, suit: Spades}}

	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		p := append(Pile(nil), base...)
		p.Shuffle(r)
		counts[p.String()]++
	}

	require.Len(t, counts, 6, "all 3! orderings must be reachable")
	for order, n := range counts {
		assert.InDelta(t, trials/6, n, 600, "ordering %s", order)
	}
}

func TestShuffleCardPositionUniform(t *testing.T) {
	const trials = 52000
	r := seeded(99)
	target := Card{rank: Ace, suit: Spades}

	var positions [DeckSize]int
	for i := 0; i < trials; i++ {
		deck := BuildDeck()
		deck.Shuffle(r)
		for pos, c := range deck {
			if c == target {
				positions[pos]++
				break
			}
		}
	}

	for pos, n := range positions {
		assert.InDelta(t, trials/DeckSize, n, 200, "position %d", pos)
	}
}

func TestDeal(t *testing.T) {
	deck := BuildDeck()
	deck.Shuffle(seeded(1))
	ids := []string{"a", "b", "c"}

	hands, err := Deal(&deck, ids, 6)
	require.NoError(t, err)

	assert.Equal(t, DeckSize-18, deck.Size())
	require.Len(t, hands, 3)

	seen := make(map[Card]string)
	for id, hand := range hands {
		assert.Len(t, hand, 6)
		for _, c := range hand {
			owner, dup := seen[c]
			assert.False(t, dup, "%s dealt to %s and %s", c, owner, id)
			seen[c] = id
			assert.NotContains(t, deck, c, "%s still in deck", c)
		}
	}
}

func TestDealRoundRobinOrder(t *testing.T) {
	deck := BuildDeck()
	ordered := append(Pile(nil), deck...)

	hands, err := Deal(&deck, []string{"a", "b", "c"}, 2)
	require.NoError(t, err)

	// Cards come off the top (end) of the deck one at a time, a, b, c, a, b, c.
	assert.Equal(t, Pile{ordered[51], ordered[48]}, hands["a"])
	assert.Equal(t, Pile{ordered[50], ordered[47]}, hands["b"])
	assert.Equal(t, Pile{ordered[49], ordered[46]}, hands["c"])
}

func TestDealRejects(t *testing.T) {
	tests := []struct {
		name    string
		players int
		each    int
		err     error
	}{
		{"too many cards", 9, 6, ErrInsufficientDeck},
		{"overflow", 2, math.MaxInt64, ErrInsufficientDeck},
		{"half of max int", 2, math.MaxInt64/2 + 1, ErrInsufficientDeck},
		{"zero cards", 2, 0, ErrInvalidCardsPerPlayer},
		{"negative cards", 2, -1, ErrInvalidCardsPerPlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck := BuildDeck()
			ids := make([]string, tt.players)
			for i := range ids {
				ids[i] = string(rune('a' + i))
			}

			hands, err := Deal(&deck, ids, tt.each)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, hands)
			assert.Equal(t, DeckSize, deck.Size())
		})
	}
}

func TestDealNoPlayers(t *testing.T) {
	deck := BuildDeck()
	hands, err := Deal(&deck, nil, 6)
	require.NoError(t, err)
	assert.Empty(t, hands)
	assert.Equal(t, DeckSize, deck.Size())
}

func TestDealExactDeck(t *testing.T) {
	deck := BuildDeck()
	hands, err := Deal(&deck, []string{"a", "b", "c", "d"}, 13)
	require.NoError(t, err)
	assert.Equal(t, 0, deck.Size())
	for _, h := range hands {
		assert.Len(t, h, 13)
	}
}

func TestDealerDealRound(t *testing.T) {
	d := NewDealer(seeded(3))
	hands, err := d.DealRound([]string{"x", "y"}, DefaultCardsPerPlayer)
	require.NoError(t, err)
	assert.Len(t, hands["x"], 6)
	assert.Len(t, hands["y"], 6)

	_, err = d.DealRound([]string{"x", "y", "z", "w", "v", "u", "t", "s", "r"}, 6)
	assert.ErrorIs(t, err, ErrInsufficientDeck)
}
