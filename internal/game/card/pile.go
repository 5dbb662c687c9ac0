package card

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Pile is an ordered sequence of cards. The top of the pile is the end of
// the slice. A Hand is a Pile in the order its cards were dealt.
type Pile []Card

// Size returns the number of cards in the pile.
func (p *Pile) Size() int {
	if p == nil {
		return 0
	}
	return len(*p)
}

// Shuffle is a Fisher-Yates pass: every one of the n! orderings is equally
// likely as long as r is uniform.
func (p *Pile) Shuffle(r *rand.Rand) {
	n := p.Size()
	if n > 1 {
		for i := n - 1; i > 0; i-- {
			j := r.IntN(i + 1)
			(*p)[i], (*p)[j] = (*p)[j], (*p)[i]
		}
	}
}

func (p *Pile) DrawTop() (Card, error) {
	n := p.Size()
	if n == 0 {
		return Card{}, fmt.Errorf("pile is empty")
	}

	top := (*p)[n-1]
	*p = (*p)[:n-1]
	return top, nil
}

func (p *Pile) AddCard(c Card) {
	*p = append(*p, c)
}

func (p *Pile) String() string {
	if p == nil || p.Size() == 0 {
		return "(Empty)"
	}

	parts := make([]string, 0, p.Size())
	for _, c := range *p {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}
