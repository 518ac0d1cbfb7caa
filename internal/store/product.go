package store

// Product is the persisted catalog document.
// Keywords and the *Lower fields are derived from the editable fields and
// are written together with them in a single Save.
type Product struct {
	ID               string
	Name             string
	Brand            string
	Description      string
	Category         string
	Price            int64 // minor currency units
	MaxQuantity      int
	Sizes            []string
	Keywords         []string
	NameLower        string
	BrandLower       string
	DescriptionLower string
	IsFeatured       bool
	IsRecommended    bool
	DateAdded        int64 // epoch millis
	Image            string
	ImageCollection  []string
}

// Searchable fields and flags understood by Query.
const (
	FieldNameLower        = "name_lower"
	FieldBrandLower       = "brand_lower"
	FieldDescriptionLower = "description_lower"
	FieldKeywords         = "keywords"
	FieldFeatured         = "is_featured"
	FieldRecommended      = "is_recommended"
)

type QueryKind int

const (
	// KindPrefixRange selects documents whose Field lies in [From, To] (byte order).
	// Results are ordered by Field, then id.
	KindPrefixRange QueryKind = iota
	// KindContainsAny selects documents whose array Field shares at least one element with Values.
	// Results are ordered by dateAdded desc, then id.
	KindContainsAny
	// KindFlag selects documents whose boolean Field is true, ordered by dateAdded desc, then id.
	KindFlag
)

// Query is a declarative, store-independent read descriptor.
type Query struct {
	Kind   QueryKind
	Field  string
	From   string
	To     string
	Values []string
	Limit  int
}

// Position identifies a document under the listing order (dateAdded desc, id asc).
type Position struct {
	DateAdded int64
	ID        string
}

type ListParams struct {
	// After is the last document of the previous page, nil for the first page.
	After *Position
	Limit int
}

// Before reports whether p sorts before q in the listing order.
func (p Position) Before(q Position) bool {
	if p.DateAdded != q.DateAdded {
		return p.DateAdded > q.DateAdded
	}
	return p.ID < q.ID
}

func (p *Product) Position() Position {
	return Position{DateAdded: p.DateAdded, ID: p.ID}
}
