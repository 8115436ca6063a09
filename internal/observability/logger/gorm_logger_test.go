package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL(`SELECT * FROM "scope_1_emissions"`))
	assert.Equal(t, "INSERT", operationFromSQL("INSERT INTO stakeholders (id) VALUES (1)"))
	assert.Equal(t, "SELECT", operationFromSQL("WITH t AS (SELECT 1) SELECT * FROM t"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestTableFromSQL(t *testing.T) {
	assert.Equal(t, "scope_1_emissions", tableFromSQL(`SELECT * FROM "scope_1_emissions" WHERE id = 1`))
	assert.Equal(t, "stakeholders", tableFromSQL("INSERT INTO `stakeholders` (`id`) VALUES (1)"))
	assert.Equal(t, "emission_factors", tableFromSQL(`UPDATE "emission_factors" SET "name"='x'`))
	assert.Equal(t, "", tableFromSQL("SELECT 1"))
}

func TestGormLoggerTagsEmissionScope(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultGormLoggerConfig()
	cfg.Logger = zap.New(core)
	cfg.SlowThreshold = time.Millisecond
	l := NewGormLogger(cfg)

	sql := func() (string, int64) { return `SELECT * FROM "scope_2_emissions" WHERE id = 7`, 1 }
	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "scope_2", fields["scope"])
	assert.Equal(t, "gorm", fields["component"])
	assert.Equal(t, true, fields["slow"])
}

func TestGormLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultGormLoggerConfig()
	cfg.Logger = zap.New(core)
	l := NewGormLogger(cfg)
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT * FROM stakeholders", 0 }

	l.Trace(ctx, time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	l.Trace(ctx, time.Now(), sql, errors.New("no such table: stakeholders"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
	assert.NotContains(t, logs.All()[0].ContextMap(), "scope")

	l.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), sql, errors.New("boom"))
	assert.Equal(t, 1, logs.Len())

	l.LogMode(gormlogger.Info).Trace(ctx, time.Now(), sql, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.DebugLevel, logs.All()[1].Level)
}

func TestGormLoggerDropsBoundValues(t *testing.T) {
	sql, params := NewGormLogger(DefaultGormLoggerConfig()).ParamsFilter(context.Background(), "SELECT ?", "sari@example.com")
	assert.Equal(t, "SELECT ?", sql)
	assert.Nil(t, params)
}
