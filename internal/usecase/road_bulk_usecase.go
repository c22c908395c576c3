package usecase

import (
	"bytes"
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/vnmap-dataprep/internal/domain/repository"
	"github.com/vnmap-dataprep/internal/pkg/errors"
)

// RoadBulkUseCase downloads the main road network of the whole country in one request.
type RoadBulkUseCase struct {
	client repository.OverpassRepository
	docs   repository.DocumentRepository
	query  string
	output string
	logger *zap.Logger
}

func NewRoadBulkUseCase(
	client repository.OverpassRepository,
	docs repository.DocumentRepository,
	query string,
	output string,
	logger *zap.Logger,
) *RoadBulkUseCase {
	return &RoadBulkUseCase{
		client: client,
		docs:   docs,
		query:  query,
		output: output,
		logger: logger,
	}
}

// Download stores the interpreter response as compact JSON and returns the element count.
func (uc *RoadBulkUseCase) Download(ctx context.Context) (int, error) {
	uc.logger.Info("Downloading road network, this may take several minutes")

	body, err := uc.client.QueryRaw(ctx, uc.query, 0)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Remark   string            `json:"remark"`
		Elements []json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		uc.logger.Error("Failed to decode bulk response", zap.Error(err))
		return 0, errors.ErrInvalidResponse.Wrapf("decode bulk response: %w", err)
	}
	if resp.Remark != "" {
		uc.logger.Warn("Overpass returned a remark, result may be truncated",
			zap.String("remark", resp.Remark))
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return 0, errors.ErrInvalidResponse.Wrapf("compact bulk response: %w", err)
	}

	size, err := uc.docs.WriteRaw(uc.output, compact.Bytes())
	if err != nil {
		return 0, err
	}

	uc.logger.Info("Road network downloaded",
		zap.Int("elements", len(resp.Elements)),
		zap.String("output", uc.output),
		zap.Int64("bytes", size))

	return len(resp.Elements), nil
}
