// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

// Package cache provides the keyed memoization used by every data resource.
//
// The cache combines two bounds: a time-to-live after which an entry becomes
// invisible, and a capacity limit enforced by evicting the least recently
// INSERTED entry. Eviction order is insertion order, not access order:
// reading an entry does not refresh its position, and overwriting an
// existing key keeps its place in the eviction queue. Resources that refresh
// a hot key frequently therefore still age out in bounded time.
//
// Keys are built with Key, which serializes an operation name and its call
// parameters deterministically (map keys sorted, stable formatting for
// primitives, JSON as a last resort) so that equal calls always share one
// cache slot.
package cache
