// Package services implements the engine's driving ports. The
// IndexService owns the ingest pipeline (tokenize, resolve headings,
// classify code, extract links), the corpus-wide link graph, and the
// derived query structures.
package services
