package app

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bills-assistant/constants"
	"github.com/joseph-ayodele/bills-assistant/internal/common"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	logger.Info("app.test", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"app.test"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestComparator_Methods(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	c := Comparator(common.OCRConfig{DPI: 300}, false, logger)
	assert.Equal(t, []constants.Method{constants.MethodLayout, constants.MethodEmbedded}, c.Methods())

	c = Comparator(common.OCRConfig{DPI: 300}, true, logger)
	assert.Equal(t, constants.AllMethods, c.Methods())
}

func TestLLM_NoKey(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Nil(t, LLM(common.LLMConfig{Model: "gpt-4-turbo"}, logger))
	assert.NotNil(t, LLM(common.LLMConfig{Model: "gpt-4-turbo", APIKey: "sk-test"}, logger))
}

func TestStore_InMemoryMigrated(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	st, err := Store(ctx, common.DatabaseConfig{}, false, logger)
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = Store(ctx, common.DatabaseConfig{}, true, logger)
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close()

	runs, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
