// Package driving defines the interfaces the core services implement
// for callers: ingestion, querying and report generation.
package driving
