package filter

import (
	"net/url"
	"testing"

	"github.com/abgdnv/storefront/internal/store"
	"github.com/stretchr/testify/assert"
)

func price(v int64) *int64 { return &v }

func ids(products []store.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

var products = []store.Product{
	{ID: "a", Category: "Bedding", Price: 2500, Sizes: []string{"s", "m"}, DateAdded: 3},
	{ID: "b", Category: "feeding", Price: 900, Sizes: []string{"m"}, DateAdded: 1},
	{ID: "c", Category: "bedding", Price: 900, DateAdded: 4},
	{ID: "d", Category: "clothing", Price: 4000, Sizes: []string{"L", "xl"}, DateAdded: 2},
}

func TestApply_Identity(t *testing.T) {
	got := Apply(products, State{})
	assert.Equal(t, products, got)
	assert.True(t, State{}.IsZero())
	assert.True(t, State{Sort: SortRelevance}.IsZero())
}

func TestApply(t *testing.T) {
	testCases := []struct {
		name     string
		state    State
		expected []string
	}{
		{"category case insensitive", State{Category: "BEDDING"}, []string{"a", "c"}},
		{"min price inclusive", State{MinPrice: price(2500)}, []string{"a", "d"}},
		{"max price inclusive", State{MaxPrice: price(900)}, []string{"b", "c"}},
		{"price range", State{MinPrice: price(900), MaxPrice: price(2500)}, []string{"a", "b", "c"}},
		{"inverted bounds ignored", State{MinPrice: price(3000), MaxPrice: price(100)}, []string{"a", "b", "c", "d"}},
		{"size intersection", State{Sizes: []string{"m", "l"}}, []string{"a", "b", "d"}},
		{"combined", State{Category: "bedding", Sizes: []string{"s"}}, []string{"a"}},
		{"no match", State{Category: "toys"}, []string{}},
		{"price asc is stable", State{Sort: SortPriceAsc}, []string{"b", "c", "a", "d"}},
		{"price desc is stable", State{Sort: SortPriceDesc}, []string{"d", "a", "b", "c"}},
		{"newest", State{Sort: SortNewest}, []string{"c", "a", "d", "b"}},
		{"unknown sort keeps order", State{Sort: "popular"}, []string{"a", "b", "c", "d"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			got := Apply(products, tc.state)

			// then
			assert.Equal(t, tc.expected, ids(got))
		})
	}
}

func TestApply_PriceBoundsHold(t *testing.T) {
	for lo := int64(0); lo <= 5000; lo += 500 {
		for hi := lo; hi <= 5000; hi += 500 {
			for _, p := range Apply(products, State{MinPrice: price(lo), MaxPrice: price(hi)}) {
				assert.GreaterOrEqual(t, p.Price, lo)
				assert.LessOrEqual(t, p.Price, hi)
			}
		}
	}
}

func TestApply_DoesNotReorderInput(t *testing.T) {
	in := append([]store.Product(nil), products...)
	_ = Apply(in, State{Sort: SortPriceDesc})
	assert.Equal(t, products, in)
}

func TestParseState(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		expected State
	}{
		{"empty", "", State{}},
		{
			"all fields",
			"category=bedding&minPrice=100&maxPrice=900&size=s&size=m&sort=Price-Asc",
			State{Category: "bedding", MinPrice: price(100), MaxPrice: price(900), Sizes: []string{"s", "m"}, Sort: SortPriceAsc},
		},
		{"malformed prices dropped", "minPrice=cheap&maxPrice=-5", State{}},
		{"blank sizes dropped", "size=&size=%20", State{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, ParseState(q))
		})
	}
}
