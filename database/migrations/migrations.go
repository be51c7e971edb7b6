// Package migrations holds the schema migrations for the local state
// store. Each file registers itself with pkg/migration via init(); the
// package is blank-imported by cmd/mapstack so every migration is known
// at CLI startup.
package migrations
