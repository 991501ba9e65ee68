package repository

import (
	"context"
	"database/sql"
	"fmt"

	"app/internal/model"
)

type FeatureRepository interface {
	ListToggles(ctx context.Context) ([]model.FeatureToggle, error)
	// UpsertToggle creates the toggle on first write and updates it thereafter.
	UpsertToggle(ctx context.Context, feature string, enabled bool) (*model.FeatureToggle, error)
}

type featureRepo struct {
	db *sql.DB
}

func NewFeatureRepo(db *sql.DB) FeatureRepository {
	return &featureRepo{db: db}
}

func (r *featureRepo) ListToggles(ctx context.Context) ([]model.FeatureToggle, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT feature, enabled FROM feature_toggles ORDER BY feature`)
	if err != nil {
		return nil, fmt.Errorf("listing feature toggles: %w", err)
	}
	defer rows.Close()

	var toggles []model.FeatureToggle
	for rows.Next() {
		var t model.FeatureToggle
		if err := rows.Scan(&t.Feature, &t.Enabled); err != nil {
			return nil, err
		}
		toggles = append(toggles, t)
	}
	return toggles, rows.Err()
}

func (r *featureRepo) UpsertToggle(ctx context.Context, feature string, enabled bool) (*model.FeatureToggle, error) {
	query := `INSERT INTO feature_toggles (feature, enabled) VALUES ($1, $2)
	          ON CONFLICT (feature) DO UPDATE SET enabled = EXCLUDED.enabled
	          RETURNING feature, enabled`
	var t model.FeatureToggle
	if err := r.db.QueryRowContext(ctx, query, feature, enabled).Scan(&t.Feature, &t.Enabled); err != nil {
		return nil, fmt.Errorf("upserting feature toggle %s: %w", feature, err)
	}
	return &t, nil
}
