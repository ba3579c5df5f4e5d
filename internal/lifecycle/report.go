// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package lifecycle

import (
	"fmt"
	"sync"

	"github.com/tomtom215/gantry/internal/logging"
)

var (
	reportMu sync.Mutex

	// activeReport is non-nil only while a training run collects its
	// train report.
	activeReport map[string]any
)

// Report records a value into the train report of the training run in
// progress. The collected report lands in the metadata of the
// artifact the run persists; tables are summarized there instead of
// stored row by row. Outside a training run the value is logged and
// dropped, so model code can call Report unconditionally from paths
// shared between training and retesting.
func Report(key string, value any) {
	reportMu.Lock()
	defer reportMu.Unlock()
	if activeReport == nil {
		logging.Info().
			Str("key", key).
			Msg("Ignoring train report entry outside a training run")
		return
	}
	activeReport[key] = value
	logging.Debug().Str("key", key).Msg("Train report entry recorded")
}

// beginTrainReport activates report collection. Only one training run
// may collect at a time.
func beginTrainReport() error {
	reportMu.Lock()
	defer reportMu.Unlock()
	if activeReport != nil {
		return fmt.Errorf("another training run is already collecting a train report")
	}
	activeReport = make(map[string]any)
	return nil
}

// endTrainReport deactivates collection and returns whatever was
// collected. Later calls return nil until the next begin.
func endTrainReport() map[string]any {
	reportMu.Lock()
	defer reportMu.Unlock()
	collected := activeReport
	activeReport = nil
	return collected
}
