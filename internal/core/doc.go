// Package core owns the lifecycle of data grid views.
//
// A [Service] keeps every open [View] in memory, keyed by a uuid. Opening a
// view returns immediately with the view in the loading state; its rows are
// fetched once in the background from a [grid.Source], bounded by a
// [LoadLimiter] and the configured load timeout. From then on the view holds
// exactly one record store, one view state, one selection and one edit
// overlay, and every operation on it is serialized by the view's mutex.
//
// # Operations
//
// State operations (search and filters, sort, paging) are accepted at any
// time and simply have no rows to act on until the load completes. Row
// operations (selection, inline edit, delete, export) return
// [ErrViewNotReady] while loading and the load error once failed.
//
// Each operation returns a [Snapshot]: the derived page, the clamped view
// state, the selection and the active edit target.
//
// # Eviction
//
// Views are discarded by [Service.CloseView] or, when abandoned, by the
// janitor started with [Service.StartJanitor].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - GRID001-GRID006: grid lifecycle and columns
//   - VAL001-VAL005: components gallery form
//   - DB004, DB006: Postgres source
//   - UPL004, UPL005: request cancelled or timed out
package core
