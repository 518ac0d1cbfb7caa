package service

import (
	"github.com/abgdnv/storefront/internal/store"
)

// ProductUpdateDto carries the editable fields of a product.
// Keywords are the user-supplied keywords; derived keywords are added on save.
type ProductUpdateDto struct {
	Name            string   `json:"name"            validate:"required,max=100"`
	Brand           string   `json:"brand"           validate:"max=60"`
	Description     string   `json:"description"     validate:"max=2000"`
	Category        string   `json:"category"        validate:"max=60"`
	Price           int64    `json:"price"           validate:"min=0"`
	MaxQuantity     int      `json:"maxQuantity"     validate:"required,min=1"`
	Sizes           []string `json:"sizes"           validate:"dive,required,max=20"`
	Keywords        []string `json:"keywords"        validate:"dive,max=60"`
	IsFeatured      bool     `json:"isFeatured"`
	IsRecommended   bool     `json:"isRecommended"`
	Image           string   `json:"image"           validate:"omitempty,url"`
	ImageCollection []string `json:"imageCollection" validate:"dive,url"`
}

// ProductCreateDto is ProductUpdateDto plus an optional pre-generated identifier.
type ProductCreateDto struct {
	ID string `json:"id" validate:"omitempty,max=64,excludesall=/?#%"`
	ProductUpdateDto
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Brand           string   `json:"brand"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Price           int64    `json:"price"`
	MaxQuantity     int      `json:"maxQuantity"`
	Sizes           []string `json:"sizes"`
	Keywords        []string `json:"keywords"`
	IsFeatured      bool     `json:"isFeatured"`
	IsRecommended   bool     `json:"isRecommended"`
	DateAdded       int64    `json:"dateAdded"`
	Image           string   `json:"image"`
	ImageCollection []string `json:"imageCollection"`
}

// PageDto is one page of the catalog listing.
type PageDto struct {
	Products   []ProductDto `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
	Total      int64        `json:"total"`
}

// SearchResultDto is the outcome of a search. Partial is set when some of the
// underlying queries failed; FailedQueries names them.
type SearchResultDto struct {
	Products      []ProductDto `json:"products"`
	Total         int64        `json:"total"`
	NextCursor    string       `json:"next_cursor,omitempty"`
	Partial       bool         `json:"partial"`
	FailedQueries []string     `json:"failed_queries,omitempty"`
}

func toDto(p *store.Product) ProductDto {
	return ProductDto{
		ID:              p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		Description:     p.Description,
		Category:        p.Category,
		Price:           p.Price,
		MaxQuantity:     p.MaxQuantity,
		Sizes:           orEmpty(p.Sizes),
		Keywords:        orEmpty(p.Keywords),
		IsFeatured:      p.IsFeatured,
		IsRecommended:   p.IsRecommended,
		DateAdded:       p.DateAdded,
		Image:           p.Image,
		ImageCollection: orEmpty(p.ImageCollection),
	}
}

func toDtos(products []store.Product) []ProductDto {
	out := make([]ProductDto, len(products))
	for i := range products {
		out[i] = toDto(&products[i])
	}
	return out
}

// applyEdits copies the editable fields of dto onto p.
func applyEdits(p *store.Product, dto ProductUpdateDto) {
	p.Name = dto.Name
	p.Brand = dto.Brand
	p.Description = dto.Description
	p.Category = dto.Category
	p.Price = dto.Price
	p.MaxQuantity = dto.MaxQuantity
	p.Sizes = dto.Sizes
	p.Keywords = dto.Keywords
	p.IsFeatured = dto.IsFeatured
	p.IsRecommended = dto.IsRecommended
	if dto.Image != "" {
		p.Image = dto.Image
	}
	if dto.ImageCollection != nil {
		p.ImageCollection = dto.ImageCollection
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
