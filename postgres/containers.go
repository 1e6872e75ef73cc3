package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Qalifah/freight/container"
)

// ContainerRepository reads container specifications.
type ContainerRepository struct {
	db *sql.DB
}

// NewContainerRepository returns a container repository backed by db.
func NewContainerRepository(db *sql.DB) *ContainerRepository {
	return &ContainerRepository{db: db}
}

// FindAll implements container.Repository.
func (r *ContainerRepository) FindAll(ctx context.Context) ([]container.Spec, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, size, type, weight_from, weight_to, name
		FROM containers
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	defer rows.Close()

	var specs []container.Spec
	for rows.Next() {
		var (
			s  container.Spec
			to decimal.NullDecimal
		)
		if err := rows.Scan(&s.ID, &s.Size, &s.Type, &s.WeightFrom, &to, &s.Name); err != nil {
			return nil, err
		}
		if to.Valid {
			s.WeightTo = &to.Decimal
		}
		specs = append(specs, s)
	}
	return specs, rows.Err()
}
