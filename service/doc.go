// Package service provides reusable read, list, find, filter and search
// operations over a remote object store, backed by a manifest listing and a
// local content cache.
//
// This package is intended for embedding bucketfs capabilities into other
// programs without shelling out to the CLI.
package service
