package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"smartgarden/internal/models"
)

type ConfigSQLite struct {
	db *sql.DB
}

func NewConfigSQLite(db *sql.DB) *ConfigSQLite {
	return &ConfigSQLite{db: db}
}

const (
	gardenConfigRowID = 1

	upsertConfigSQL = `
		INSERT INTO garden_config (id, temp_danger_min, temp_danger_max, temp_warn_min, temp_warn_max,
			humidity_min, humidity_max, soil_threshold, poll_interval_ms, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			temp_danger_min=excluded.temp_danger_min,
			temp_danger_max=excluded.temp_danger_max,
			temp_warn_min=excluded.temp_warn_min,
			temp_warn_max=excluded.temp_warn_max,
			humidity_min=excluded.humidity_min,
			humidity_max=excluded.humidity_max,
			soil_threshold=excluded.soil_threshold,
			poll_interval_ms=excluded.poll_interval_ms,
			updated_at=excluded.updated_at
	`

	selectConfigSQL = `
		SELECT temp_danger_min, temp_danger_max, temp_warn_min, temp_warn_max,
			humidity_min, humidity_max, soil_threshold, poll_interval_ms
		FROM garden_config WHERE id=?
	`
)

// Save upserts the config row (id always 1).
func (r *ConfigSQLite) Save(ctx context.Context, cfg models.ThresholdConfig) error {
	_, err := r.db.ExecContext(ctx, upsertConfigSQL,
		gardenConfigRowID,
		cfg.TempDangerMin,
		cfg.TempDangerMax,
		cfg.TempWarnMin,
		cfg.TempWarnMax,
		cfg.HumidityMin,
		cfg.HumidityMax,
		cfg.SoilThreshold,
		cfg.PollIntervalMs,
		time.Now().UTC(),
	)
	return err
}

// Load fetches the config row. ok is false when nothing has been saved yet.
func (r *ConfigSQLite) Load(ctx context.Context) (models.ThresholdConfig, bool, error) {
	row := r.db.QueryRowContext(ctx, selectConfigSQL, gardenConfigRowID)

	var c models.ThresholdConfig
	if err := row.Scan(
		&c.TempDangerMin,
		&c.TempDangerMax,
		&c.TempWarnMin,
		&c.TempWarnMax,
		&c.HumidityMin,
		&c.HumidityMax,
		&c.SoilThreshold,
		&c.PollIntervalMs,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ThresholdConfig{}, false, nil
		}
		return models.ThresholdConfig{}, false, err
	}
	return c, true, nil
}
