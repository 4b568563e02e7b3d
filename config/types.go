package config

// ArchiveConfig locates the collected snapshot files.
type ArchiveConfig struct {
	Dir string `yaml:"dir" validate:"omitempty"`
	Zip string `yaml:"zip" validate:"omitempty"`
}

// StopsConfig locates the static GTFS stops table for the name join.
type StopsConfig struct {
	File string `yaml:"file" validate:"omitempty"`
	Zip  string `yaml:"zip" validate:"omitempty"`
}

// ExportConfig selects output sinks; all are optional and independent.
type ExportConfig struct {
	CSVDir      string `yaml:"csvDir" validate:"omitempty"`
	SQLitePath  string `yaml:"sqlitePath" validate:"omitempty"`
	PostgresURL string `yaml:"postgresURL" validate:"omitempty"`
}

// NATSConfig enables publishing reconstructed trips when URL is set.
type NATSConfig struct {
	URL           string `yaml:"url" validate:"omitempty,uri"`
	SubjectPrefix string `yaml:"subjectPrefix"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Archive ArchiveConfig `yaml:"archive"`
	Stops   StopsConfig   `yaml:"stops"`

	// Feeds restricts processing to the named feed identifiers; empty
	// means every feed found in the archive.
	Feeds []string `yaml:"feeds"`

	// Chunks is the number of contiguous segments per feed; zero takes
	// the pipeline default.
	Chunks int `yaml:"chunks" validate:"gte=0"`

	Export  ExportConfig  `yaml:"export"`
	NATS    NATSConfig    `yaml:"nats"`
	Metrics MetricsConfig `yaml:"metrics"`
}
