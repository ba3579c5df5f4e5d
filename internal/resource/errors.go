// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks a resource configuration problem such as an
	// unresolvable type or a missing connection. Creation fails fast
	// on the first one found.
	ErrConfig = errors.New("resource configuration error")

	// ErrUnsupported marks an operation the backing resource type
	// does not implement.
	ErrUnsupported = errors.New("operation not supported")

	// ErrStreamingWithCache is returned when a chunked fetch is
	// attempted on a resource that has caching enabled. A stream
	// cannot be cached, so the combination is rejected at call time.
	ErrStreamingWithCache = errors.New("chunked fetch not possible on a cached resource")
)

// Unsupported builds the standard error for an operation a resource
// type does not implement, pointing at the supported alternative when
// there is one.
func Unsupported(id, op, alternative string) error {
	if alternative != "" {
		return fmt.Errorf("resource %s: %s: use %s instead: %w", id, op, alternative, ErrUnsupported)
	}
	return fmt.Errorf("resource %s: %s: %w", id, op, ErrUnsupported)
}
