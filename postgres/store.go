package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
	"github.com/Qalifah/freight/money"
)

// Dataset is a batch of trade-lane records to load.
type Dataset struct {
	Points     []*location.Point
	Containers []container.Spec
	Legs       []lane.Leg
	DropFees   []lane.DropFee
}

// Load writes the dataset in one transaction. Records whose id already exists
// are left untouched.
func Load(ctx context.Context, db *sql.DB, ds Dataset) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = loadPoints(ctx, tx, ds.Points); err != nil {
		return err
	}
	for _, s := range ds.Containers {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO containers (id, size, type, weight_from, weight_to, name)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			int64(s.ID), s.Size, string(s.Type), s.WeightFrom, s.WeightTo, s.Name); err != nil {
			return fmt.Errorf("load container %d: %w", s.ID, err)
		}
	}
	for _, l := range ds.Legs {
		if err = loadLeg(ctx, tx, l); err != nil {
			return err
		}
	}
	for _, d := range ds.DropFees {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO drop_fees (id, company_id, container_id,
				sea_start_point_id, sea_end_point_id, rail_start_point_id, rail_end_point_id,
				effective_from, effective_to, price, currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING`,
			d.ID, d.Carrier, d.Container, d.SeaStart, d.SeaEnd, d.RailStart, d.RailEnd,
			lane.Day(d.EffectiveFrom), lane.Day(d.EffectiveTo), d.Price, orDefault(d.Currency, money.USD)); err != nil {
			return fmt.Errorf("load drop fee %d: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

func loadPoints(ctx context.Context, tx *sql.Tx, points []*location.Point) error {
	// Root points go first so child rows can reference them.
	ordered := make([]*location.Point, 0, len(points))
	for _, p := range points {
		if p.IsRoot() {
			ordered = append(ordered, p)
		}
	}
	for _, p := range points {
		if !p.IsRoot() {
			ordered = append(ordered, p)
		}
	}
	for _, p := range ordered {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO points (id, city, country, parent_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			int64(p.ID), p.City, p.Country, p.ParentID)
		if err != nil {
			return fmt.Errorf("load point %s: %w", p.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		for _, a := range p.Aliases {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO point_aliases (point_id, lang, name, is_main)
				VALUES ($1, $2, $3, $4)`,
				int64(p.ID), string(a.Lang), a.Name, a.Main); err != nil {
				return fmt.Errorf("load alias of point %s: %w", p.ID, err)
			}
		}
	}
	return nil
}

func loadLeg(ctx context.Context, tx *sql.Tx, l lane.Leg) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO companies (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`,
		int64(l.Carrier.ID), l.Carrier.Name); err != nil {
		return fmt.Errorf("load carrier %d: %w", l.Carrier.ID, err)
	}

	from, to := lane.Day(l.EffectiveFrom), lane.Day(l.EffectiveTo)
	var err error
	switch t := l.Tariff.(type) {
	case lane.SeaTariff:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sea_routes (id, company_id, container_id, start_point_id, end_point_id,
				effective_from, effective_to, filo, fifo, currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING`,
			l.ID, int64(l.Carrier.ID), int64(l.Container.ID), int64(l.Start), int64(l.End),
			from, to, t.FILO, t.FIFO, orDefault(t.Currency, money.USD))
	case lane.RailTariff:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rail_routes (id, company_id, container_id, start_point_id, end_point_id,
				effective_from, effective_to, price, drop_price, guard, currency, drop_currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO NOTHING`,
			l.ID, int64(l.Carrier.ID), int64(l.Container.ID), int64(l.Start), int64(l.End),
			from, to, t.Price, t.Drop, t.Guard,
			orDefault(t.Currency, money.RUB), orDefault(t.DropCurrency, money.USD))
	default:
		return fmt.Errorf("load leg %d: unknown tariff %T", l.ID, l.Tariff)
	}
	if err != nil {
		return fmt.Errorf("load leg %d: %w", l.ID, err)
	}
	return nil
}

func orDefault(c, fallback money.Currency) string {
	if c == "" {
		return string(fallback)
	}
	return string(c)
}
