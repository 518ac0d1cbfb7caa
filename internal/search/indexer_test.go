package search

import (
	"testing"

	"github.com/abgdnv/storefront/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"whitespace and hyphens", "Baby  Blanket-Extra soft", []string{"baby", "blanket", "extra", "soft"}},
		{"short tokens dropped", "A to Zed", []string{"zed"}},
		{"leading separator", " -bib set", []string{"bib", "set"}},
		{"runes not bytes", "çé ñoño", []string{"ñoño"}},
		{"empty", "", []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tokens(tc.input))
		})
	}
}

func TestIndex(t *testing.T) {
	// given
	p := store.Product{
		Name:        "Bib Set",
		Description: "Soft cotton bib",
		Brand:       "Tiny-Co",
		Keywords:    []string{" Gift ", "", "BIB", "xl"},
	}

	// when
	f := Index(p)

	// then
	assert.Equal(t, []string{"bib", "set", "soft", "cotton", "tiny", "gift", "xl"}, f.Keywords)
	assert.Equal(t, "bib set", f.NameLower)
	assert.Equal(t, "tiny-co", f.BrandLower)
	assert.Equal(t, "soft cotton bib", f.DescriptionLower)
}

func TestIndex_Idempotent(t *testing.T) {
	products := []store.Product{
		{Name: "Baby Blanket", Brand: "Acme", Description: "Warm wool-blend blanket"},
		{Name: "Burp Cloth", Keywords: []string{"Muslin", "ok"}},
		{},
	}
	for _, p := range products {
		once := Apply(p)
		twice := Apply(once)

		assert.Equal(t, Index(p).Keywords, Index(once).Keywords)
		assert.Equal(t, once, twice)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	p := store.Product{Name: "Bib Set", Keywords: []string{"Gift"}}
	_ = Apply(p)
	assert.Equal(t, []string{"Gift"}, p.Keywords)
	assert.Empty(t, p.NameLower)
}
