package repository

// DocumentRepository reads inputs and writes output documents as JSON files.
type DocumentRepository interface {
	// ReadJSON decodes the file at path into v
	ReadJSON(path string, v any) error

	// WriteJSON atomically replaces path with v encoded as JSON and returns the byte size
	WriteJSON(path string, v any, indent bool) (int64, error)

	// WriteRaw atomically replaces path with data
	WriteRaw(path string, data []byte) (int64, error)
}
