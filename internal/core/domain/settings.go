package domain

// Default settings values.
const (
	DefaultTocMinLevel  = 2
	DefaultTocMaxLevel  = 3
	DefaultBatchWorkers = 4
)

// Settings are the caller-tunable knobs of the engine.
type Settings struct {
	// TocMinLevel and TocMaxLevel bound the heading levels that the
	// advisory unlisted-heading check covers.
	TocMinLevel int `toml:"toc_min_level"`
	TocMaxLevel int `toml:"toc_max_level"`

	// FlattenNestedTOC controls whether nested TOC sub-bullets are
	// validated as flat entries (true) or only top-level entries are
	// considered (false).
	FlattenNestedTOC bool `toml:"flatten_nested_toc"`

	// BatchWorkers bounds the worker pool used by batch ingestion.
	BatchWorkers int `toml:"batch_workers"`
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() Settings {
	return Settings{
		TocMinLevel:      DefaultTocMinLevel,
		TocMaxLevel:      DefaultTocMaxLevel,
		FlattenNestedTOC: true,
		BatchWorkers:     DefaultBatchWorkers,
	}
}

// Normalised returns a copy with out-of-range values clamped to
// usable defaults.
func (s Settings) Normalised() Settings {
	if s.TocMinLevel < 1 || s.TocMinLevel > 6 {
		s.TocMinLevel = DefaultTocMinLevel
	}
	if s.TocMaxLevel < s.TocMinLevel || s.TocMaxLevel > 6 {
		s.TocMaxLevel = DefaultTocMaxLevel
		if s.TocMaxLevel < s.TocMinLevel {
			s.TocMaxLevel = s.TocMinLevel
		}
	}
	if s.BatchWorkers < 1 {
		s.BatchWorkers = DefaultBatchWorkers
	}
	return s
}
