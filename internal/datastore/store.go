// Package datastore writes exported movie tables to SQL databases and
// Datasette instances.
package datastore

import "context"

// Store is a table sink that accepts schemas and batches of rows.
type Store interface {
	// Connect establishes a connection to the data store
	Connect() error

	// CreateTable runs a DDL statement
	CreateTable(schema string) error

	// BatchInsert inserts records into table, replacing rows with the same key
	BatchInsert(ctx context.Context, database string, table string, records []map[string]any) error

	// Close closes the connection to the data store
	Close() error
}
