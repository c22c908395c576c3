package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"

	"github.com/vnmap-dataprep/internal/domain/repository"
	apperrors "github.com/vnmap-dataprep/internal/pkg/errors"
)

type documentRepository struct {
	logger *zap.Logger
}

// NewDocumentRepository создает репозиторий JSON документов на локальном диске
func NewDocumentRepository(logger *zap.Logger) repository.DocumentRepository {
	return &documentRepository{logger: logger}
}

func (r *documentRepository) ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.ErrInputNotFound.Wrapf("%s: %w", path, err)
		}
		return apperrors.ErrInputInvalid.Wrapf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		r.logger.Error("Failed to decode input", zap.String("path", path), zap.Error(err))
		return apperrors.ErrInputInvalid.Wrapf("decode %s: %w", path, err)
	}

	r.logger.Debug("Input loaded", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// WriteJSON keeps non-ASCII text literal (Vietnamese names stay readable).
// indent uses two spaces, otherwise the output is compact.
func (r *documentRepository) WriteJSON(path string, v any, indent bool) (int64, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return 0, apperrors.ErrInputInvalid.Wrapf("encode %s: %w", path, err)
	}

	// Encode appends a newline
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return r.WriteRaw(path, data)
}

// WriteRaw writes to a temp file in the target directory and renames it over path,
// so readers never see a half-written document.
func (r *documentRepository) WriteRaw(path string, data []byte) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		r.logger.Error("Failed to write document", zap.String("path", path), zap.Error(err))
		return 0, err
	}

	r.logger.Info("Document written",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)

	return int64(len(data)), nil
}
