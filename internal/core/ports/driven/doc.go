// Package driven defines the interfaces the core depends on and
// adapters implement: document persistence and settings storage.
package driven
