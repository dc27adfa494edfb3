package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/taskcomposer/pkg/catalog"
	"github.com/dukex/taskcomposer/pkg/channels/kafka"
	"github.com/dukex/taskcomposer/pkg/persistence/file"
	"github.com/dukex/taskcomposer/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence(t *testing.T) {
	t.Parallel()

	p, err := NewPersistence(t.Context(), slog.Default(), "file://"+t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, p)

	p, err = NewPersistence(t.Context(), slog.Default(), t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, p)

	_, err = NewPersistence(t.Context(), slog.Default(), "mongodb://localhost/db")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestNewPublisher(t *testing.T) {
	t.Parallel()

	publisher, err := NewPublisher(QueueGoChannel, nil, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &queue.Watermill{}, publisher)
	require.NoError(t, publisher.Close())

	_, err = NewPublisher(QueueWatermillKafka, nil, slog.Default())
	assert.ErrorIs(t, err, kafka.ErrNoBrokers)

	_, err = NewPublisher("rabbitmq", nil, slog.Default())
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestNewCatalog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "services.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"services":{"s3":{"tasks":["download"]}}}`), 0o600))

	c, release, err := NewCatalog(t.Context(), slog.Default(), CatalogConfig{DefinitionPath: path, RefreshSpec: "@every 1m"})
	require.NoError(t, err)
	defer release()

	service, err := c.Lookup(t.Context(), "s3")
	require.NoError(t, err)
	require.NotNil(t, service)
	assert.True(t, service.HasTask("download"))

	_, _, err = NewCatalog(t.Context(), slog.Default(), CatalogConfig{DefinitionPath: path, RefreshSpec: "not a schedule"})
	assert.Error(t, err)
}

func TestNewCatalog_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	c, release, err := NewCatalog(t.Context(), slog.Default(),
		CatalogConfig{DefinitionPath: filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)
	defer release()

	assert.IsType(t, &catalog.File{}, c)

	service, err := c.Lookup(t.Context(), "s3")
	require.NoError(t, err)
	assert.Nil(t, service)
}

func TestNewTracer_Disabled(t *testing.T) {
	t.Parallel()

	tracer, shutdown, err := NewTracer(t.Context(), false, "taskcomposer")
	require.NoError(t, err)
	assert.NotNil(t, tracer)
	assert.NoError(t, shutdown(t.Context()))
}
