// Package localstore is the on-device record store of the catalog.
//
// # Overview
//
// Modules are kept in a single SQLite table keyed by id (modernc.org/sqlite,
// pure Go). The schema is embedded and applied with goose when the database is
// opened, so Open is safe to call on every start.
//
// # Semantics
//
//   - Put is an upsert; overwriting keeps the row's position in scan order.
//   - GetAll is a full scan in insertion order. Sorting is the caller's job.
//   - Get returns common.ErrNotFound for an unknown id.
//   - Delete is a hard delete and succeeds for unknown ids.
//
// Every other failure wraps common.ErrLocalStorage: the caller must treat it
// as fatal for the operation at hand.
//
// Typical Usage
//
//	db, _ := localstore.Open(ctx, "catalog.db")
//	store := localstore.New(db)
//	_ = store.Put(ctx, m)
//	all, _ := store.GetAll(ctx)
package localstore
