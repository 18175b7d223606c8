package storage

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jeffMauritius/scrapper/internal/model"
)

type SearchFilter struct {
	// Name matches case-insensitively anywhere in the name.
	Name   string
	City   string
	Region string
	Type   string
}

// Search lists establishments matching every non-empty filter field,
// without images.
func (r *Repository) Search(ctx context.Context, f SearchFilter) ([]model.Establishment, error) {
	var where []string
	var args []any
	add := func(cond, val string) {
		args = append(args, val)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.Name != "" {
		add("lower(name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.City != "" {
		add("city_key = ?", model.NewKey("", f.City).City)
	}
	if f.Region != "" {
		add("lower(trim(region)) = ?", strings.ToLower(strings.TrimSpace(f.Region)))
	}
	if f.Type != "" {
		add("type = ?", f.Type)
	}

	query := `SELECT ` + establishmentColumns + ` FROM establishments`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name, city`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Establishment
	for rows.Next() {
		e, err := scanEstablishment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var csvHeader = []string{
	"id", "name", "type", "city", "region", "country", "starting_price", "currency",
	"min_capacity", "max_capacity", "rating", "review_count", "url", "created_at",
}

// WriteCSV writes establishments with a header row. Unknown numbers are
// empty cells.
func WriteCSV(w io.Writer, list []model.Establishment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range list {
		row := []string{
			e.ID, e.Name, e.Type, e.City, e.Region, e.Country,
			formatFloat(e.StartingPrice), e.Currency,
			formatInt(e.MinCapacity), formatInt(e.MaxCapacity),
			formatFloat(e.Rating), strconv.Itoa(e.ReviewCount),
			e.URL, e.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func formatInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
