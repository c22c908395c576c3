package domain

import "time"

// DateLayout is the format of Document.Generated.
const DateLayout = "2006-01-02"

// Document is the versioned envelope written by every exporter.
type Document[F any] struct {
	Version   string `json:"version"`
	Generated string `json:"generated"`
	Source    string `json:"source"`
	Note      string `json:"note,omitempty"`
	Total     int    `json:"total"`
	Features  []F    `json:"features"`
}

// NewDocument builds a document stamped with the given time. Total always matches len(features).
func NewDocument[F any](version, source, note string, generated time.Time, features []F) *Document[F] {
	if features == nil {
		features = []F{}
	}
	return &Document[F]{
		Version:   version,
		Generated: generated.Format(DateLayout),
		Source:    source,
		Note:      note,
		Total:     len(features),
		Features:  features,
	}
}
