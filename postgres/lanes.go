package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/lane"
	"github.com/Qalifah/freight/location"
)

const legColumns = `
	r.id, r.company_id, c.name,
	k.id, k.size, k.type, k.weight_from, k.weight_to, k.name,
	r.start_point_id, r.end_point_id, r.effective_from, r.effective_to`

const legFilter = `
	JOIN companies c ON c.id = r.company_id
	JOIN containers k ON k.id = r.container_id
	WHERE (cardinality($1::bigint[]) = 0 OR r.start_point_id = ANY($1))
	  AND (cardinality($2::bigint[]) = 0 OR r.end_point_id = ANY($2))
	  AND $3::date BETWEEN r.effective_from AND r.effective_to
	  AND r.container_id = ANY($4)
	ORDER BY r.id`

const findSeaLegs = `SELECT` + legColumns + `, r.filo, r.fifo, r.currency FROM sea_routes r` + legFilter

const findRailLegs = `SELECT` + legColumns + `,
	r.price, r.drop_price, r.guard, r.currency, r.drop_currency
	FROM rail_routes r` + legFilter

const findDropFees = `
	SELECT id, company_id, container_id,
		sea_start_point_id, sea_end_point_id, rail_start_point_id, rail_end_point_id,
		effective_from, effective_to, price, currency
	FROM drop_fees
	WHERE $1::date BETWEEN effective_from AND effective_to
	  AND (container_id IS NULL OR container_id = ANY($2))
	ORDER BY id`

const terminals = `
	SELECT DISTINCT t.point_id, c.name
	FROM (
		SELECT company_id, %[1]s AS point_id FROM sea_routes
		WHERE $1::date BETWEEN effective_from AND effective_to
		UNION ALL
		SELECT company_id, %[1]s AS point_id FROM rail_routes
		WHERE $1::date BETWEEN effective_from AND effective_to
	) t
	JOIN companies c ON c.id = t.company_id
	ORDER BY t.point_id, c.name`

// LaneRepository reads sea and rail legs and drop fees.
type LaneRepository struct {
	db *sql.DB
}

// NewLaneRepository returns a trade-lane repository backed by db.
func NewLaneRepository(db *sql.DB) *LaneRepository {
	return &LaneRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// FindLegs implements lane.Repository.
func (r *LaneRepository) FindLegs(ctx context.Context, f lane.LegFilter) ([]lane.Leg, error) {
	var (
		query string
		scan  func(rowScanner) (lane.Leg, error)
	)
	switch f.Mode {
	case lane.Sea:
		query, scan = findSeaLegs, scanSeaLeg
	case lane.Rail:
		query, scan = findRailLegs, scanRailLeg
	default:
		return nil, fmt.Errorf("find legs: unknown mode %d", f.Mode)
	}
	if len(f.Containers) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, query,
		pointIDs(f.From), pointIDs(f.To), lane.Day(f.Date), containerIDs(f.Containers))
	if err != nil {
		return nil, fmt.Errorf("find %s legs: %w", f.Mode, err)
	}
	defer rows.Close()

	var legs []lane.Leg
	for rows.Next() {
		l, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s leg: %w", f.Mode, err)
		}
		legs = append(legs, l)
	}
	return legs, rows.Err()
}

func scanLeg(s rowScanner, extra ...interface{}) (lane.Leg, error) {
	var (
		l  lane.Leg
		to decimal.NullDecimal
	)
	dest := []interface{}{
		&l.ID, &l.Carrier.ID, &l.Carrier.Name,
		&l.Container.ID, &l.Container.Size, &l.Container.Type,
		&l.Container.WeightFrom, &to, &l.Container.Name,
		&l.Start, &l.End, &l.EffectiveFrom, &l.EffectiveTo,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return lane.Leg{}, err
	}
	if to.Valid {
		l.Container.WeightTo = &to.Decimal
	}
	return l, nil
}

func scanSeaLeg(s rowScanner) (lane.Leg, error) {
	var (
		filo, fifo decimal.NullDecimal
		t          lane.SeaTariff
	)
	l, err := scanLeg(s, &filo, &fifo, &t.Currency)
	if err != nil {
		return lane.Leg{}, err
	}
	t.FILO = nullable(filo)
	t.FIFO = nullable(fifo)
	l.Tariff = t
	return l, nil
}

func scanRailLeg(s rowScanner) (lane.Leg, error) {
	var (
		drop, guard decimal.NullDecimal
		t           lane.RailTariff
	)
	l, err := scanLeg(s, &t.Price, &drop, &guard, &t.Currency, &t.DropCurrency)
	if err != nil {
		return lane.Leg{}, err
	}
	t.Drop = nullable(drop)
	t.Guard = nullable(guard)
	l.Tariff = t
	return l, nil
}

// FindDropFees implements lane.Repository. The tier of a fee is derived from
// the point columns it sets, so the tier filter is applied after the scan.
func (r *LaneRepository) FindDropFees(ctx context.Context, f lane.DropFilter) ([]lane.DropFee, error) {
	rows, err := r.db.QueryContext(ctx, findDropFees, lane.Day(f.Date), containerIDs(f.Containers))
	if err != nil {
		return nil, fmt.Errorf("find drop fees: %w", err)
	}
	defer rows.Close()

	var fees []lane.DropFee
	for rows.Next() {
		var (
			d                                    lane.DropFee
			company, spec                        sql.NullInt64
			seaStart, seaEnd, railStart, railEnd sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &company, &spec,
			&seaStart, &seaEnd, &railStart, &railEnd,
			&d.EffectiveFrom, &d.EffectiveTo, &d.Price, &d.Currency); err != nil {
			return nil, fmt.Errorf("scan drop fee: %w", err)
		}
		if company.Valid {
			id := lane.CarrierID(company.Int64)
			d.Carrier = &id
		}
		if spec.Valid {
			id := container.ID(spec.Int64)
			d.Container = &id
		}
		d.SeaStart = point(seaStart)
		d.SeaEnd = point(seaEnd)
		d.RailStart = point(railStart)
		d.RailEnd = point(railEnd)
		if f.Accepts(d) {
			fees = append(fees, d)
		}
	}
	return fees, rows.Err()
}

// Terminals implements lane.Repository.
func (r *LaneRepository) Terminals(ctx context.Context, side lane.Side, date time.Time) ([]lane.Terminal, error) {
	column := "start_point_id"
	if side == lane.Destination {
		column = "end_point_id"
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(terminals, column), lane.Day(date))
	if err != nil {
		return nil, fmt.Errorf("list terminals: %w", err)
	}
	defer rows.Close()

	var ts []lane.Terminal
	for rows.Next() {
		var t lane.Terminal
		if err := rows.Scan(&t.Point, &t.Carrier); err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, rows.Err()
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func point(n sql.NullInt64) *location.ID {
	if !n.Valid {
		return nil
	}
	id := location.ID(n.Int64)
	return &id
}
