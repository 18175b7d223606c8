package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/jeffMauritius/scrapper/internal/model"
)

// Repository stores establishments and their images in DuckDB or Postgres.
// Queries use $n placeholders, which both drivers accept.
type Repository struct {
	db       *sql.DB
	driver   string
	logger   *slog.Logger
	registry KeyRegistry

	mu          sync.Mutex
	lastCreated time.Time
}

// Open connects with driver "duckdb" (dsn is a file path, "" for memory)
// or "pgx"/"postgres" (dsn is a Postgres URL).
func Open(driver, dsn string, logger *slog.Logger) (*Repository, error) {
	switch driver {
	case "", "duckdb":
		driver = "duckdb"
	case "pgx", "postgres", "postgresql":
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "duckdb" {
		// A DuckDB file allows a single writer; one connection keeps
		// every statement on it.
		db.SetMaxOpenConns(1)
	}
	return &Repository{db: db, driver: driver, logger: logger}, nil
}

// WithRegistry shares claimed keys with other runs through reg.
func (r *Repository) WithRegistry(reg KeyRegistry) *Repository {
	r.registry = reg
	return r
}

func (r *Repository) Driver() string { return r.driver }

func (r *Repository) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS establishments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT,
			description TEXT,
			starting_price DOUBLE PRECISION,
			currency TEXT,
			city TEXT,
			region TEXT,
			country TEXT,
			min_capacity INTEGER,
			max_capacity INTEGER,
			rating DOUBLE PRECISION,
			review_count INTEGER,
			url TEXT,
			created_at TIMESTAMP,
			name_key TEXT,
			city_key TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS images (
			id TEXT PRIMARY KEY,
			establishment_id TEXT NOT NULL,
			url TEXT NOT NULL,
			sort_order INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS images_establishment_idx ON images (establishment_id)`,
		`CREATE INDEX IF NOT EXISTS establishments_key_idx ON establishments (name_key, city_key)`,
	}
	for i, q := range stmts {
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
		if i == 0 {
			if err := r.addKeyColumns(ctx); err != nil {
				return err
			}
		}
	}
	return r.backfillKeys(ctx)
}

// addKeyColumns upgrades tables created before the key columns existed.
// DuckDB refuses ALTER on indexed tables, so it runs before any index on
// establishments and only when a column is missing.
func (r *Repository) addKeyColumns(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_name = 'establishments'`)
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	have := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("inspect schema: %w", err)
		}
		have[strings.ToLower(name)] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}

	for _, col := range []string{"name_key", "city_key"} {
		if have[col] {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `ALTER TABLE establishments ADD COLUMN `+col+` TEXT`); err != nil {
			return fmt.Errorf("add column %s: %w", col, err)
		}
	}
	return nil
}

// backfillKeys fills the key columns of rows written before they existed.
// Keys are computed with model.NewKey so every whitespace rune is trimmed,
// not just the spaces SQL trim removes.
func (r *Repository) backfillKeys(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, coalesce(city, '') FROM establishments WHERE name_key IS NULL OR city_key IS NULL`)
	if err != nil {
		return fmt.Errorf("backfill keys: %w", err)
	}
	type pending struct {
		id  string
		key model.Key
	}
	var todo []pending
	for rows.Next() {
		var id, name, city string
		if err := rows.Scan(&id, &name, &city); err != nil {
			rows.Close()
			return fmt.Errorf("backfill keys: %w", err)
		}
		todo = append(todo, pending{id: id, key: model.NewKey(name, city)})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("backfill keys: %w", err)
	}

	for _, p := range todo {
		if _, err := r.db.ExecContext(ctx,
			`UPDATE establishments SET name_key = $1, city_key = $2 WHERE id = $3`,
			p.key.Name, p.key.City, p.id); err != nil {
			return fmt.Errorf("backfill key of %s: %w", p.id, err)
		}
	}
	if len(todo) > 0 {
		r.logger.Info("Backfilled establishment keys", "count", len(todo))
	}
	return nil
}

// ExistsByKey checks for an establishment with the same normalized name
// and city, compared on the key columns written by Create.
func (r *Repository) ExistsByKey(ctx context.Context, key model.Key) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM establishments WHERE name_key = $1 AND city_key = $2)`,
		key.Name, key.City).Scan(&exists)
	return exists, err
}

// Create inserts e and its images in one transaction, assigning ids and the
// creation time.
func (r *Repository) Create(ctx context.Context, e *model.Establishment) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	key := e.Key()
	_, err = tx.ExecContext(ctx, `
	INSERT INTO establishments (id, name, type, description, starting_price, currency, city, region, country,
		min_capacity, max_capacity, rating, review_count, url, created_at, name_key, city_key)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		e.ID, e.Name, e.Type, e.Description, nullable(e.StartingPrice), e.Currency, e.City, e.Region, e.Country,
		nullable(e.MinCapacity), nullable(e.MaxCapacity), nullable(e.Rating), e.ReviewCount, e.URL, e.CreatedAt,
		key.Name, key.City)
	if err != nil {
		return fmt.Errorf("insert establishment %q: %w", e.Name, err)
	}

	for i := range e.Images {
		img := &e.Images[i]
		if img.ID == "" {
			img.ID = uuid.NewString()
		}
		img.EstablishmentID = e.ID
		_, err := tx.ExecContext(ctx,
			`INSERT INTO images (id, establishment_id, url, sort_order) VALUES ($1, $2, $3, $4)`,
			img.ID, img.EstablishmentID, img.URL, img.Position)
		if err != nil {
			return fmt.Errorf("insert image %d of %q: %w", i, e.Name, err)
		}
	}
	return tx.Commit()
}

// Append inserts rec unless an establishment with its key exists. With a
// registry the key is claimed first, so two runs cannot both insert it.
func (r *Repository) Append(ctx context.Context, rec model.Record) (bool, error) {
	key := rec.Key()
	if r.registry != nil {
		claimed, err := r.registry.Claim(ctx, key)
		if err != nil {
			return false, err
		}
		if !claimed {
			return false, nil
		}
	}

	exists, err := r.ExistsByKey(ctx, key)
	if err != nil {
		r.release(ctx, key)
		return false, fmt.Errorf("lookup %q: %w", rec.Name, err)
	}
	if exists {
		return false, nil
	}

	e := model.EstablishmentFromRecord(rec)
	if err := r.Create(ctx, &e); err != nil {
		r.release(ctx, key)
		return false, err
	}
	return true, nil
}

// now returns strictly increasing timestamps at the microsecond precision
// the databases store, so creation order is also insertion order.
func (r *Repository) now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(r.lastCreated) {
		t = r.lastCreated.Add(time.Microsecond)
	}
	r.lastCreated = t
	return t
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func (r *Repository) release(ctx context.Context, key model.Key) {
	if r.registry == nil {
		return
	}
	if err := r.registry.Release(ctx, key); err != nil {
		r.logger.Warn("Key release failed", "key", key.String(), "err", err)
	}
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM establishments`).Scan(&n)
	return n, err
}

const establishmentColumns = `id, name, type, description, starting_price, currency, city, region, country,
	min_capacity, max_capacity, rating, review_count, url, created_at`

func scanEstablishment(rows *sql.Rows) (model.Establishment, error) {
	var e model.Establishment
	var typ, desc, currency, city, region, country, url sql.NullString
	var reviews sql.NullInt64
	err := rows.Scan(&e.ID, &e.Name, &typ, &desc, &e.StartingPrice, &currency, &city, &region, &country,
		&e.MinCapacity, &e.MaxCapacity, &e.Rating, &reviews, &url, &e.CreatedAt)
	e.Type = typ.String
	e.Description = desc.String
	e.Currency = currency.String
	e.City = city.String
	e.Region = region.String
	e.Country = country.String
	e.URL = url.String
	e.ReviewCount = int(reviews.Int64)
	return e, err
}

// List returns establishments ordered by creation, skipping offset and
// returning at most limit rows (all when limit <= 0). Images are loaded.
func (r *Repository) List(ctx context.Context, offset, limit int) ([]model.Establishment, error) {
	query := `SELECT ` + establishmentColumns + ` FROM establishments ORDER BY created_at, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += ` OFFSET $1`
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var out []model.Establishment
	for rows.Next() {
		e, err := scanEstablishment(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		imgs, err := r.Images(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Images = imgs
	}
	return out, nil
}

func (r *Repository) Images(ctx context.Context, establishmentID string) ([]model.Image, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, establishment_id, url, coalesce(sort_order, 0) FROM images
		 WHERE establishment_id = $1 ORDER BY sort_order, id`, establishmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	imgs := []model.Image{}
	for rows.Next() {
		var img model.Image
		if err := rows.Scan(&img.ID, &img.EstablishmentID, &img.URL, &img.Position); err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}
	return imgs, rows.Err()
}

func (r *Repository) UpdateImageURL(ctx context.Context, imageID, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE images SET url = $1 WHERE id = $2`, url, imageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("image %s: %w", imageID, sql.ErrNoRows)
	}
	return nil
}

// SetURL sets url on every establishment matching name, city and region
// exactly, returning how many rows changed.
func (r *Repository) SetURL(ctx context.Context, name, city, region, url string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE establishments SET url = $1 WHERE name = $2 AND city = $3 AND region = $4`,
		url, name, city, region)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes establishments and their images.
func (r *Repository) Delete(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	in := strings.Join(placeholders, ", ")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM images WHERE establishment_id IN (`+in+`)`, args...); err != nil {
		return 0, fmt.Errorf("delete images: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM establishments WHERE id IN (`+in+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete establishments: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

// Clear deletes every image and then every establishment.
func (r *Repository) Clear(ctx context.Context) (images, establishments int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM images`)
	if err != nil {
		return 0, 0, fmt.Errorf("clear images: %w", err)
	}
	images, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM establishments`)
	if err != nil {
		return 0, 0, fmt.Errorf("clear establishments: %w", err)
	}
	establishments, _ = res.RowsAffected()
	return images, establishments, tx.Commit()
}

// Member is one establishment of a duplicate group.
type Member struct {
	ID         string
	Name       string
	City       string
	CreatedAt  time.Time
	ImageCount int
}

type DuplicateGroup struct {
	Key     string
	Members []Member
}

// Duplicates groups establishments sharing a name key.
// Members are ordered by creation so the first is the one to keep.
func (r *Repository) Duplicates(ctx context.Context) ([]DuplicateGroup, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT e.name_key AS k, e.id, e.name, coalesce(e.city, ''), e.created_at,
		(SELECT count(*) FROM images i WHERE i.establishment_id = e.id) AS image_count
	FROM establishments e
	WHERE e.name_key IN (
		SELECT name_key FROM establishments GROUP BY name_key HAVING count(*) > 1
	)
	ORDER BY k, e.created_at, e.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []DuplicateGroup
	for rows.Next() {
		var key string
		var m Member
		if err := rows.Scan(&key, &m.ID, &m.Name, &m.City, &m.CreatedAt, &m.ImageCount); err != nil {
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].Key != key {
			groups = append(groups, DuplicateGroup{Key: key})
		}
		g := &groups[len(groups)-1]
		g.Members = append(g.Members, m)
	}
	return groups, rows.Err()
}

// Names returns every establishment id and name.
func (r *Repository) Names(ctx context.Context) ([]Member, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, coalesce(city, '') FROM establishments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.City); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) Close() error {
	if r.registry != nil {
		if err := r.registry.Close(); err != nil {
			r.logger.Warn("Registry close failed", "err", err)
		}
	}
	return r.db.Close()
}
