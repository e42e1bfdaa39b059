package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"option-pricer/internal/config"
	"option-pricer/internal/models"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	return fields
}

func TestLogQuote(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	LogQuote(logger, "AAPL", models.OptionTypePut, 175, 7, models.Greeks{Price: 1.25, Delta: -0.31})

	fields := decodeLine(t, &buf)
	assert.Equal(t, "quote", fields["event"])
	assert.Equal(t, "AAPL", fields["symbol"])
	assert.Equal(t, "PUT", fields["type"])
	assert.Equal(t, 175.0, fields["strike"])
	assert.Equal(t, -0.31, fields["delta"])
}

func TestLogContract(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	LogContract(logger, &models.Contract{
		ID:       "abc",
		Symbol:   "BTC",
		Type:     models.OptionTypeCall,
		Side:     models.ContractSideWrite,
		Strike:   65000,
		Premium:  812.5,
		Quantity: 1,
	})

	fields := decodeLine(t, &buf)
	assert.Equal(t, "contract", fields["event"])
	assert.Equal(t, "abc", fields["contract_id"])
	assert.Equal(t, "WRITE", fields["side"])
	assert.Equal(t, "info", fields["level"])
}

func TestLogChainRefreshIsDebug(t *testing.T) {
	var buf bytes.Buffer
	chain := &models.OptionChain{Symbol: "SPY", SpotPrice: 512, Expiry: models.Expiry14D}

	LogChainRefresh(zerolog.New(&buf).Level(zerolog.InfoLevel), chain, time.Millisecond)
	assert.Zero(t, buf.Len())

	LogChainRefresh(zerolog.New(&buf).Level(zerolog.DebugLevel), chain, time.Millisecond)
	fields := decodeLine(t, &buf)
	assert.Equal(t, "SPY", fields["symbol"])
	assert.Equal(t, 14.0, fields["days"])
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := WithOperation(WithSymbol(zerolog.New(&buf), "ETH"), "chain")

	ctx := WithLogger(context.Background(), logger)
	ctxLogger := FromContext(ctx)
	ctxLogger.Info().Msg("hello")

	fields := decodeLine(t, &buf)
	assert.Equal(t, "ETH", fields["symbol"])
	assert.Equal(t, "chain", fields["operation"])

	// Missing logger falls back to a no-op.
	fallback := FromContext(context.Background())
	fallback.Info().Msg("dropped")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestFromConfig(t *testing.T) {
	lc := FromConfig(config.LoggingConfig{Level: "warn", Console: false, File: true, MaxSize: 5})
	assert.Equal(t, "warn", lc.Level)
	assert.False(t, lc.Console)
	assert.True(t, lc.File)
	assert.Equal(t, 5, lc.MaxSize)
	assert.Equal(t, 7, lc.MaxBackups)
}

func TestNewLoggerWithConfig_FileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pricer.log")
	logger := NewLoggerWithConfig(LogConfig{
		Level:    "info",
		File:     true,
		FilePath: path,
		MaxSize:  1,
	})

	logger.Info().Msg("written")
	assert.FileExists(t, path)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
