package model

import "time"

// StatsExport is the top-level structure for the statistics export.
type StatsExport struct {
	ExportedAt time.Time  `json:"exported_at" yaml:"exported_at"`
	Store      string     `json:"store" yaml:"store"`
	Statistics Statistics `json:"statistics" yaml:"statistics"`
}
