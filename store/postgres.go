package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"water-quality-monitor/models"
)

const selectReadings = `SELECT timestamp, record_number,
	temperature, dissolved_oxygen, dissolved_oxygen_saturation, ph,
	turbidity, chlorophyll, salinity, specific_conductance,
	average_water_speed, average_water_direction
FROM water_quality_data
ORDER BY timestamp`

// OpenPostgres opens a pooled connection and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// PostgresSource reads the water_quality_data table.
type PostgresSource struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresSource(db *sql.DB, logger *zap.Logger) *PostgresSource {
	return &PostgresSource{db: db, logger: logger}
}

func (p *PostgresSource) LoadReadings(ctx context.Context) ([]models.Reading, error) {
	start := time.Now()
	rows, err := p.db.QueryContext(ctx, selectReadings)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		var (
			r      models.Reading
			record sql.NullInt64
			vals   [10]sql.NullFloat64
		)
		if err := rows.Scan(&r.Timestamp, &record,
			&vals[0], &vals[1], &vals[2], &vals[3], &vals[4],
			&vals[5], &vals[6], &vals[7], &vals[8], &vals[9],
		); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		r.RecordNumber = record.Int64
		fields := []**float64{
			&r.Temperature, &r.DissolvedOxygen, &r.DissolvedOxygenSaturation, &r.PH,
			&r.Turbidity, &r.Chlorophyll, &r.Salinity, &r.SpecificConductance,
			&r.AverageWaterSpeed, &r.AverageWaterDirection,
		}
		for i, v := range vals {
			if v.Valid {
				*fields[i] = models.Float(v.Float64)
			}
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}

	p.logger.Info("Loaded readings from postgres",
		zap.Int("count", len(readings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return readings, nil
}
