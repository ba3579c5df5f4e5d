// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package store

import (
	"os"
	"os/user"
	"runtime"
	"runtime/debug"
)

// Time layouts used in metadata and backup file names.
const (
	// createdLayout is the human-readable timestamp in metadata and
	// the key format of the metrics history.
	createdLayout = "2006-01-02 15:04:05"

	// backupLayout is the filename-safe timestamp appended to rotated
	// artifacts under previous/.
	backupLayout = "2006-01-02_15-04-05"
)

// Payload is an opaque trained model artifact. Format tags the
// encoding the owning model module used, e.g. "gob" or "json", and
// travels with the artifact so the module can decode what it wrote.
type Payload struct {
	Bytes  []byte
	Format string
}

// Metadata describes one stored model version.
type Metadata struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Module    string `json:"module"`
	Created   string `json:"created"`
	CreatedBy string `json:"created_by,omitempty"`
	Format    string `json:"format"`

	// APIVersion always equals the model version at dump time.
	APIName    string `json:"api_name,omitempty"`
	APIVersion string `json:"api_version,omitempty"`

	// ColumnsOrdered records whether the training run ordered its
	// input columns, the basis of the column-order advisory at
	// prediction time.
	ColumnsOrdered bool `json:"columns_ordered,omitempty"`

	// Metrics holds the latest test metrics. MetricsHistory keeps
	// every recorded set keyed by timestamp; two updates within the
	// same second overwrite one key.
	Metrics        map[string]any            `json:"metrics,omitempty"`
	MetricsHistory map[string]map[string]any `json:"metrics_history,omitempty"`

	TrainReport    map[string]any `json:"train_report,omitempty"`
	ConfigSnapshot map[string]any `json:"config_snapshot,omitempty"`

	Environment *Environment `json:"environment,omitempty"`
}

// Environment fingerprints the process that trained an artifact.
type Environment struct {
	GoVersion    string            `json:"go_version"`
	OS           string            `json:"os"`
	Arch         string            `json:"arch"`
	Hostname     string            `json:"hostname,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// currentUser resolves the training user for metadata, empty when
// the process has no resolvable identity.
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// CaptureEnvironment records the current runtime and module
// dependency versions.
func CaptureEnvironment() *Environment {
	env := &Environment{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	if host, err := os.Hostname(); err == nil {
		env.Hostname = host
	}
	if info, ok := debug.ReadBuildInfo(); ok && len(info.Deps) > 0 {
		env.Dependencies = make(map[string]string, len(info.Deps))
		for _, dep := range info.Deps {
			env.Dependencies[dep.Path] = dep.Version
		}
	}
	return env
}
