package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vnmap-dataprep/internal/infrastructure/overpass"
	apperrors "github.com/vnmap-dataprep/internal/pkg/errors"
	"github.com/vnmap-dataprep/internal/repository/file"
	"github.com/vnmap-dataprep/internal/usecase"
)

func TestRoadBulkUseCase_Download(t *testing.T) {
	logger := zap.NewNop()
	docs := file.NewDocumentRepository(logger)
	ctx := context.Background()
	query := overpass.BulkQuery("VN", overpass.DefaultBulkRoadTypes, overpass.BulkQueryTimeout)

	t.Run("writes the response compacted", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "vn_roads.json")
		body := []byte("{\n  \"version\": 0.6,\n  \"elements\": [\n    {\"type\": \"way\", \"id\": 1, \"tags\": {\"name\": \"Đường Láng\"}},\n    {\"type\": \"way\", \"id\": 2}\n  ]\n}\n")

		client := &MockOverpassRepository{}
		client.On("QueryRaw", mock.Anything, query, 0).Return(body, nil)

		uc := usecase.NewRoadBulkUseCase(client, docs, query, output, logger)

		count, err := uc.Download(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, `{"version":0.6,"elements":[{"type":"way","id":1,"tags":{"name":"Đường Láng"}},{"type":"way","id":2}]}`, string(data))

		client.AssertExpectations(t)
	})

	t.Run("request failure writes nothing", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "vn_roads.json")
		client := &MockOverpassRepository{}
		client.On("QueryRaw", mock.Anything, query, 0).Return(nil, apperrors.ErrTileFetchFailed.Wrapf("status 504"))

		uc := usecase.NewRoadBulkUseCase(client, docs, query, output, logger)

		_, err := uc.Download(ctx)
		assert.True(t, errors.Is(err, apperrors.ErrTileFetchFailed))

		_, statErr := os.Stat(output)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("non-json body", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "vn_roads.json")
		client := &MockOverpassRepository{}
		client.On("QueryRaw", mock.Anything, query, 0).Return([]byte("<html>"), nil)

		uc := usecase.NewRoadBulkUseCase(client, docs, query, output, logger)

		_, err := uc.Download(ctx)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidResponse))
		assert.False(t, errors.Is(err, apperrors.ErrTileFetchFailed))

		_, statErr := os.Stat(output)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("remark is logged and body kept", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "vn_roads.json")
		body := []byte(`{"remark": "runtime error: Query timed out", "elements": [{"type": "way", "id": 9}]}`)

		core, logs := observer.New(zap.WarnLevel)
		client := &MockOverpassRepository{}
		client.On("QueryRaw", mock.Anything, query, 0).Return(body, nil)

		uc := usecase.NewRoadBulkUseCase(client, docs, query, output, zap.New(core))

		count, err := uc.Download(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		remarks := logs.FilterField(zap.String("remark", "runtime error: Query timed out"))
		assert.Equal(t, 1, remarks.Len())

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, `{"remark":"runtime error: Query timed out","elements":[{"type":"way","id":9}]}`, string(data))
	})
}
