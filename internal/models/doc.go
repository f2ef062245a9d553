// Package models defines the domain entities and persistence interfaces for vidshelf.
//
// The package contains two kinds of types:
//
// 1. Entities
//   - [VideoRecord] : immutable metadata for one imported video file
//   - [ImportBatch] : summary of a single import run
//
// 2. Interfaces
//   - [Model] : identity, timestamp and validation, implemented by [VideoRecord]
//   - [VideoStore] : ordered persistence of video records
//   - [BatchStore] : import run history
//
// A [VideoRecord] is created once per import and never modified; the collection is kept in import order.
package models
