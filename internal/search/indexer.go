// Package search derives the keyword index of products and runs prefix/keyword
// searches as a fan-out of independent store queries.
package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/abgdnv/storefront/internal/store"
)

// minTokenLen is the shortest token kept in the keyword index.
const minTokenLen = 3

var separators = regexp.MustCompile(`[\s-]+`)

// IndexFields are the derived fields persisted alongside a product.
type IndexFields struct {
	Keywords         []string
	NameLower        string
	BrandLower       string
	DescriptionLower string
}

// Tokens lowercases s, splits it on runs of whitespace and hyphens and keeps
// tokens of at least three runes, in order of appearance.
func Tokens(s string) []string {
	parts := separators.Split(strings.ToLower(s), -1)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if utf8.RuneCountInString(part) >= minTokenLen {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// Index computes the derived fields of p. p.Keywords are taken as the
// user-supplied keywords: they are lowercased and trimmed but not length filtered.
// Keywords keep first-seen order over name, description, brand and user keywords.
func Index(p store.Product) IndexFields {
	seen := make(map[string]struct{})
	keywords := make([]string, 0)
	add := func(k string) {
		if k == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keywords = append(keywords, k)
	}

	for _, field := range []string{p.Name, p.Description, p.Brand} {
		for _, t := range Tokens(field) {
			add(t)
		}
	}
	for _, k := range p.Keywords {
		add(strings.ToLower(strings.TrimSpace(k)))
	}

	return IndexFields{
		Keywords:         keywords,
		NameLower:        strings.ToLower(p.Name),
		BrandLower:       strings.ToLower(p.Brand),
		DescriptionLower: strings.ToLower(p.Description),
	}
}

// Apply returns a copy of p with its derived fields recomputed.
func Apply(p store.Product) store.Product {
	f := Index(p)
	p.Keywords = f.Keywords
	p.NameLower = f.NameLower
	p.BrandLower = f.BrandLower
	p.DescriptionLower = f.DescriptionLower
	return p
}
