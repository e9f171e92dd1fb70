package telemetry_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopcart/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
}

func openInstrumentedDB(t *testing.T, cfg telemetry.DBInstrumentationConfig, m *telemetry.Metrics) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Use(telemetry.NewDBInstrumentation(cfg, m, nil)))
	require.NoError(t, db.AutoMigrate(&widget{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestDBInstrumentation_RecordsQueryDurations(t *testing.T) {
	m := telemetry.NewMetrics()
	db := openInstrumentedDB(t, telemetry.DBInstrumentationConfig{DBSystem: "sqlite"}, m)

	require.NoError(t, db.Create(&widget{Name: "bolt"}).Error)
	var found widget
	require.NoError(t, db.First(&found).Error)

	assert.Equal(t, "bolt", found.Name)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(m.Registry(), "shopcart_db_query_duration_seconds"), 2)
}

func TestDBInstrumentation_Tracing(t *testing.T) {
	sr := setupTestTracer(t)
	db := openInstrumentedDB(t, telemetry.DBInstrumentationConfig{Tracing: true, DBSystem: "sqlite"}, nil)

	ctx, parent := telemetry.StartServiceSpan(context.Background(), "test", "query")
	var widgets []widget
	require.NoError(t, db.WithContext(ctx).Where("name = ?", "none").Find(&widgets).Error)
	parent.End()

	var found bool
	for _, span := range sr.Ended() {
		for _, attr := range span.Attributes() {
			if attr == attribute.String("db.sql.table", "widgets") {
				found = true
			}
		}
	}
	assert.True(t, found, "expected a query span tagged with the table name")
}

func TestMetrics_RegisterDBStats(t *testing.T) {
	m := telemetry.NewMetrics()
	db := openInstrumentedDB(t, telemetry.DBInstrumentationConfig{}, m)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	require.NoError(t, m.RegisterDBStats(sqlDB, "shopcart"))
	assert.Greater(t, testutil.CollectAndCount(m.Registry(), "go_sql_open_connections"), 0)
}
