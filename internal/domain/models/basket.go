package models

import "strings"

// BasketMember is one tracked symbol with its display metadata.
type BasketMember struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Cohort    string  `json:"cohort"`
	Threshold float64 `json:"threshold"`
}

// Basket is the configured set of tracked symbols in display order.
type Basket struct {
	members  []BasketMember
	bySymbol map[string]BasketMember
}

// NewBasket indexes members by upper-cased symbol. Later duplicates are
// ignored.
func NewBasket(members []BasketMember) *Basket {
	b := &Basket{bySymbol: make(map[string]BasketMember, len(members))}
	for _, m := range members {
		m.Symbol = strings.ToUpper(strings.TrimSpace(m.Symbol))
		if m.Symbol == "" {
			continue
		}
		if _, dup := b.bySymbol[m.Symbol]; dup {
			continue
		}
		b.bySymbol[m.Symbol] = m
		b.members = append(b.members, m)
	}
	return b
}

// Symbols returns the basket symbols in order.
func (b *Basket) Symbols() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.members))
	for i, m := range b.members {
		out[i] = m.Symbol
	}
	return out
}

// Member looks up a symbol.
func (b *Basket) Member(sym string) (BasketMember, bool) {
	if b == nil {
		return BasketMember{}, false
	}
	m, ok := b.bySymbol[sym]
	return m, ok
}

// Name returns the display name, falling back to the symbol.
func (b *Basket) Name(sym string) string {
	if m, ok := b.Member(sym); ok && m.Name != "" {
		return m.Name
	}
	return sym
}
