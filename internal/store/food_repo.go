package store

import (
	"context"
	"database/sql"

	"github.com/heys-app/metabolic-engine/internal/domain"
)

// FoodRepo handles persistence for the food reference index.
// It implements domain.FoodIndex.
type FoodRepo struct {
	DB *sql.DB
}

// Lookup resolves a food ref to per-100g macro values, or (nil, nil) when
// the ref is unknown.
func (r *FoodRepo) Lookup(ctx context.Context, ref string) (*domain.FoodFacts, error) {
	const q = `SELECT kcal_100, protein_100, carbs_100, fat_100, fiber_100 FROM food_items WHERE ref = ?`

	var f domain.FoodFacts
	err := r.DB.QueryRowContext(ctx, q, ref).Scan(&f.Kcal100, &f.Protein100, &f.Carbs100, &f.Fat100, &f.Fiber100)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, "lookup food", err)
	}
	return &f, nil
}

// Upsert inserts or replaces one food reference row.
func (r *FoodRepo) Upsert(ctx context.Context, ref, name string, facts domain.FoodFacts) error {
	const q = `INSERT INTO food_items (ref, name, kcal_100, protein_100, carbs_100, fat_100, fiber_100)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(ref) DO UPDATE SET
	name = excluded.name,
	kcal_100 = excluded.kcal_100,
	protein_100 = excluded.protein_100,
	carbs_100 = excluded.carbs_100,
	fat_100 = excluded.fat_100,
	fiber_100 = excluded.fiber_100`

	_, err := r.DB.ExecContext(ctx, q, ref, name, facts.Kcal100, facts.Protein100, facts.Carbs100, facts.Fat100, facts.Fiber100)
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "upsert food", err)
	}
	return nil
}
