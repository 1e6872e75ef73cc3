// Package postgres provides PostgreSQL implementations of the point, container
// and trade-lane repositories.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Qalifah/freight/container"
	"github.com/Qalifah/freight/location"
)

const schema = `
CREATE TABLE IF NOT EXISTS points (
	id         BIGINT PRIMARY KEY,
	city       TEXT NOT NULL,
	country    TEXT NOT NULL DEFAULT '',
	parent_id  BIGINT REFERENCES points (id)
);

CREATE TABLE IF NOT EXISTS point_aliases (
	point_id  BIGINT NOT NULL REFERENCES points (id) ON DELETE CASCADE,
	lang      TEXT NOT NULL,
	name      TEXT NOT NULL,
	is_main   BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS companies (
	id    BIGINT PRIMARY KEY,
	name  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS containers (
	id           BIGINT PRIMARY KEY,
	size         INTEGER NOT NULL,
	type         TEXT NOT NULL,
	weight_from  NUMERIC NOT NULL DEFAULT 0,
	weight_to    NUMERIC,
	name         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sea_routes (
	id              BIGINT PRIMARY KEY,
	company_id      BIGINT NOT NULL REFERENCES companies (id),
	container_id    BIGINT NOT NULL REFERENCES containers (id),
	start_point_id  BIGINT NOT NULL REFERENCES points (id),
	end_point_id    BIGINT NOT NULL REFERENCES points (id),
	effective_from  DATE NOT NULL,
	effective_to    DATE NOT NULL CHECK (effective_to >= effective_from),
	filo            NUMERIC,
	fifo            NUMERIC,
	currency        TEXT NOT NULL DEFAULT 'USD'
);

CREATE TABLE IF NOT EXISTS rail_routes (
	id              BIGINT PRIMARY KEY,
	company_id      BIGINT NOT NULL REFERENCES companies (id),
	container_id    BIGINT NOT NULL REFERENCES containers (id),
	start_point_id  BIGINT NOT NULL REFERENCES points (id),
	end_point_id    BIGINT NOT NULL REFERENCES points (id),
	effective_from  DATE NOT NULL,
	effective_to    DATE NOT NULL CHECK (effective_to >= effective_from),
	price           NUMERIC NOT NULL,
	drop_price      NUMERIC,
	guard           NUMERIC,
	currency        TEXT NOT NULL DEFAULT 'RUB',
	drop_currency   TEXT NOT NULL DEFAULT 'USD'
);

CREATE TABLE IF NOT EXISTS drop_fees (
	id                   BIGINT PRIMARY KEY,
	company_id           BIGINT REFERENCES companies (id),
	container_id         BIGINT REFERENCES containers (id),
	sea_start_point_id   BIGINT REFERENCES points (id),
	sea_end_point_id     BIGINT REFERENCES points (id),
	rail_start_point_id  BIGINT REFERENCES points (id),
	rail_end_point_id    BIGINT REFERENCES points (id),
	effective_from       DATE NOT NULL,
	effective_to         DATE NOT NULL CHECK (effective_to >= effective_from),
	price                NUMERIC NOT NULL,
	currency             TEXT NOT NULL DEFAULT 'USD'
);

CREATE INDEX IF NOT EXISTS sea_routes_start_idx ON sea_routes (start_point_id, effective_from, effective_to);
CREATE INDEX IF NOT EXISTS rail_routes_start_idx ON rail_routes (start_point_id, effective_from, effective_to);
CREATE INDEX IF NOT EXISTS point_aliases_point_idx ON point_aliases (point_id);
`

// Open opens a connection pool to the database at dsn and checks that it can
// be reached.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the tables the repositories read from if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func pointIDs(ids []location.ID) pq.Int64Array {
	a := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		a[i] = int64(id)
	}
	return a
}

func containerIDs(ids []container.ID) pq.Int64Array {
	a := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		a[i] = int64(id)
	}
	return a
}
