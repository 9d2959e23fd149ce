// Package domain contains the core entities of the corpus engine:
// documents, blocks, heading trees, links, validation issues and reports.
// Types here have no dependencies on adapters or services.
package domain
