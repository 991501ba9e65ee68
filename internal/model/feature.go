package model

// FeatureToggle is a global named flag, unique by feature name and upsertable.
type FeatureToggle struct {
	Feature string `db:"feature" json:"feature"`
	Enabled bool   `db:"enabled" json:"enabled"`
}
