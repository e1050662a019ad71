package telemetry

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// OpenDB opens a traced database/sql pool and registers its connection pool
// stats as db.sql.connection.* metrics. No connection is made until first use.
// The returned registration must be unregistered when the pool is closed.
func OpenDB(driverName, dsn string, opts ...otelsql.Option) (*sql.DB, metric.Registration, error) {
	opts = append([]otelsql.Option{otelsql.WithAttributes(semconv.DBSystemPostgreSQL)}, opts...)

	db, err := otelsql.Open(driverName, dsn, opts...)
	if err != nil {
		return nil, nil, err
	}

	reg, err := otelsql.RegisterDBStatsMetrics(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("registering db stats metrics: %w", err)
	}
	return db, reg, nil
}
