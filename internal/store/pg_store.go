package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, name, brand, description, category, price, max_quantity, sizes, keywords,
	name_lower, brand_lower, description_lower, is_featured, is_recommended, date_added, image, image_collection`

// rangeColumns whitelists the columns a prefix range query may target.
var rangeColumns = map[string]string{
	FieldNameLower:        "name_lower",
	FieldBrandLower:       "brand_lower",
	FieldDescriptionLower: "description_lower",
}

var flagColumns = map[string]string{
	FieldFeatured:    "is_featured",
	FieldRecommended: "is_recommended",
}

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// Save upserts every column of the product in one statement.
func (p *PgStore) Save(ctx context.Context, pr Product) error {
	const q = `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			max_quantity = EXCLUDED.max_quantity,
			sizes = EXCLUDED.sizes,
			keywords = EXCLUDED.keywords,
			name_lower = EXCLUDED.name_lower,
			brand_lower = EXCLUDED.brand_lower,
			description_lower = EXCLUDED.description_lower,
			is_featured = EXCLUDED.is_featured,
			is_recommended = EXCLUDED.is_recommended,
			date_added = EXCLUDED.date_added,
			image = EXCLUDED.image,
			image_collection = EXCLUDED.image_collection`

	_, err := p.db.Exec(ctx, q,
		pr.ID, pr.Name, pr.Brand, pr.Description, pr.Category, pr.Price, pr.MaxQuantity,
		nonNil(pr.Sizes), nonNil(pr.Keywords),
		pr.NameLower, pr.BrandLower, pr.DescriptionLower,
		pr.IsFeatured, pr.IsRecommended, pr.DateAdded, pr.Image, nonNil(pr.ImageCollection))
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id string) (*Product, error) {
	rows, err := p.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// Delete removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Delete(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

func (p *PgStore) Query(ctx context.Context, q Query) ([]Product, error) {
	var (
		sql  string
		args []any
	)
	switch q.Kind {
	case KindPrefixRange:
		col, ok := rangeColumns[q.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported range field %q", q.Field)
		}
		sql = fmt.Sprintf(`SELECT %s FROM products
			WHERE %[2]s COLLATE "C" >= $1 AND %[2]s COLLATE "C" <= $2
			ORDER BY %[2]s COLLATE "C", id COLLATE "C" LIMIT $3`, productColumns, col)
		args = []any{q.From, q.To, q.Limit}
	case KindContainsAny:
		if q.Field != FieldKeywords {
			return nil, fmt.Errorf("unsupported array field %q", q.Field)
		}
		sql = `SELECT ` + productColumns + ` FROM products
			WHERE keywords && $1::text[]
			ORDER BY date_added DESC, id COLLATE "C" LIMIT $2`
		args = []any{nonNil(q.Values), q.Limit}
	case KindFlag:
		col, ok := flagColumns[q.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported flag field %q", q.Field)
		}
		sql = fmt.Sprintf(`SELECT %s FROM products WHERE %s
			ORDER BY date_added DESC, id COLLATE "C" LIMIT $1`, productColumns, col)
		args = []any{q.Limit}
	default:
		return nil, fmt.Errorf("unsupported query kind %d", q.Kind)
	}

	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products on %s: %w", q.Field, err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to read products on %s: %w", q.Field, err)
	}
	return products, nil
}

// List pages through the catalog by keyset, never by offset.
func (p *PgStore) List(ctx context.Context, params ListParams) ([]Product, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if params.After == nil {
		rows, err = p.db.Query(ctx, `SELECT `+productColumns+` FROM products
			ORDER BY date_added DESC, id COLLATE "C" LIMIT $1`, params.Limit)
	} else {
		rows, err = p.db.Query(ctx, `SELECT `+productColumns+` FROM products
			WHERE date_added < $1 OR (date_added = $1 AND id COLLATE "C" > $2)
			ORDER BY date_added DESC, id COLLATE "C" LIMIT $3`,
			params.After.DateAdded, params.After.ID, params.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to read product list: %w", err)
	}
	return products, nil
}

// Count runs a full count over the products table.
func (p *PgStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func scanProduct(row pgx.CollectableRow) (Product, error) {
	var pr Product
	err := row.Scan(
		&pr.ID, &pr.Name, &pr.Brand, &pr.Description, &pr.Category, &pr.Price, &pr.MaxQuantity,
		&pr.Sizes, &pr.Keywords,
		&pr.NameLower, &pr.BrandLower, &pr.DescriptionLower,
		&pr.IsFeatured, &pr.IsRecommended, &pr.DateAdded, &pr.Image, &pr.ImageCollection,
	)
	return pr, err
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
