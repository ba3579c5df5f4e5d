// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

/*
Package supervisor builds the suture supervision tree for serve mode.

The tree keeps two child supervisors under the root so a crashing
control task never takes the prediction service out of rotation:

	gantry (root)
	├── serving-layer    HTTP prediction server
	└── control-layer    config file watcher

Services are restarted with exponential backoff per suture's failure
accounting. Supervisor events are logged through the zerolog-backed
slog handler.
*/
package supervisor
