package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Qalifah/freight/location"
)

// LocationRepository reads points and their aliases.
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository returns a point repository backed by db.
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Find implements location.Repository.
func (r *LocationRepository) Find(ctx context.Context, id location.ID) (*location.Point, error) {
	p := &location.Point{}
	var parent sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, city, country, parent_id FROM points WHERE id = $1`, int64(id),
	).Scan(&p.ID, &p.City, &p.Country, &parent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", location.ErrUnknown, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find point %s: %w", id, err)
	}
	if parent.Valid {
		pid := location.ID(parent.Int64)
		p.ParentID = &pid
	}
	aliases, err := r.aliases(ctx, []location.ID{id})
	if err != nil {
		return nil, err
	}
	p.Aliases = aliases[id]
	return p, nil
}

// FindAll implements location.Repository.
func (r *LocationRepository) FindAll(ctx context.Context) ([]*location.Point, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, city, country, parent_id FROM points ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	defer rows.Close()

	var (
		points []*location.Point
		ids    []location.ID
	)
	for rows.Next() {
		p := &location.Point{}
		var parent sql.NullInt64
		if err := rows.Scan(&p.ID, &p.City, &p.Country, &parent); err != nil {
			return nil, err
		}
		if parent.Valid {
			pid := location.ID(parent.Int64)
			p.ParentID = &pid
		}
		points = append(points, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	aliases, err := r.aliases(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		p.Aliases = aliases[p.ID]
	}
	return points, nil
}

func (r *LocationRepository) aliases(ctx context.Context, ids []location.ID) (map[location.ID][]location.Alias, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT point_id, lang, name, is_main
		FROM point_aliases
		WHERE point_id = ANY($1)
		ORDER BY point_id, is_main DESC, lang`, pointIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer rows.Close()

	m := make(map[location.ID][]location.Alias)
	for rows.Next() {
		var (
			id location.ID
			a  location.Alias
		)
		if err := rows.Scan(&id, &a.Lang, &a.Name, &a.Main); err != nil {
			return nil, err
		}
		m[id] = append(m[id], a)
	}
	return m, rows.Err()
}
