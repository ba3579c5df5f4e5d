// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package resource

// MatchTags reports whether a resource tagged with resourceTags is
// visible to a process running with processTags. An empty list on
// either side matches everything; otherwise the two must share at
// least one tag.
func MatchTags(resourceTags, processTags []string) bool {
	if len(resourceTags) == 0 || len(processTags) == 0 {
		return true
	}
	for _, rt := range resourceTags {
		for _, pt := range processTags {
			if rt == pt {
				return true
			}
		}
	}
	return false
}
