package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBInstrumentationConfig controls query tracing and timing
type DBInstrumentationConfig struct {
	Tracing         bool          // register otelgorm spans
	LogFullSQL      bool          // keep query variables in spans (dev only)
	SlowQueryThresh time.Duration // queries slower than this are flagged on their span
	DBSystem        string        // db.system attribute, e.g. postgresql or sqlite
}

// DBInstrumentation is a GORM plugin that times every statement into
// Prometheus and, when tracing is on, wraps statements in otelgorm spans
// flagged when slow.
type DBInstrumentation struct {
	config  DBInstrumentationConfig
	metrics *Metrics
	logger  *zap.Logger
}

type dbStartKey struct{}

// NewDBInstrumentation creates the plugin. metrics may be nil.
func NewDBInstrumentation(cfg DBInstrumentationConfig, metrics *Metrics, logger *zap.Logger) *DBInstrumentation {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBInstrumentation{config: cfg, metrics: metrics, logger: logger}
}

// Name implements gorm.Plugin
func (p *DBInstrumentation) Name() string {
	return "shopcart:db_instrumentation"
}

// Initialize implements gorm.Plugin
func (p *DBInstrumentation) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	processors := []struct {
		operation string
		before    func(string, func(*gorm.DB)) error
		after     func(string, func(*gorm.DB)) error
	}{
		{"create",
			cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query",
			cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update",
			cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete",
			cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row",
			cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw",
			cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, proc := range processors {
		if err := proc.before("shopcart:before_"+proc.operation, p.before); err != nil {
			return err
		}
		if err := proc.after("shopcart:after_"+proc.operation, p.after(proc.operation)); err != nil {
			return err
		}
	}

	// otelgorm goes last so its span is still open when the after callbacks run
	if p.config.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
		if !p.config.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	p.logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", p.config.Tracing),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func (p *DBInstrumentation) before(db *gorm.DB) {
	if db.Statement.Context == nil {
		db.Statement.Context = context.Background()
	}
	db.Statement.Context = context.WithValue(db.Statement.Context, dbStartKey{}, time.Now())
}

func (p *DBInstrumentation) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		start, ok := ctx.Value(dbStartKey{}).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)

		if p.metrics != nil {
			p.metrics.ObserveDBQuery(operation, db.Statement.Table, elapsed)
		}

		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
		if elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}

var _ gorm.Plugin = (*DBInstrumentation)(nil)
