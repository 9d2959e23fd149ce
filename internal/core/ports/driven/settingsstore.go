package driven

import "github.com/custodia-labs/mdcorpus/internal/core/domain"

// SettingsStore loads and persists engine settings.
type SettingsStore interface {
	// Load returns the stored settings, or defaults when nothing has
	// been persisted yet.
	Load() (domain.Settings, error)

	// Save persists the settings.
	Save(settings domain.Settings) error
}
