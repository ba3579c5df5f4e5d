// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package file

import (
	"fmt"

	"github.com/tomtom215/gantry/internal/config"
	"github.com/tomtom215/gantry/internal/resource"
)

func init() {
	resource.RegisterBuiltin(provider{})
}

type provider struct{}

func (provider) Name() string { return "file" }

func (provider) Serves() []string {
	return []string{"csv", "euro_csv", "text_file", "binary_file"}
}

func (provider) NewSource(name string, res config.Resource, _ config.Connection) (resource.Source, error) {
	if res.Path == "" {
		return nil, fmt.Errorf("%s: file resources need a path: %w", name, resource.ErrConfig)
	}
	switch res.Type {
	case "csv":
		return &csvSource{id: name, path: res.Path, sep: ','}, nil
	case "euro_csv":
		return &csvSource{id: name, path: res.Path, sep: ';', decimalComma: true}, nil
	case "text_file", "binary_file":
		return &rawSource{id: name, path: res.Path, typ: res.Type}, nil
	default:
		return nil, fmt.Errorf("%s: file provider cannot serve type %q: %w", name, res.Type, resource.ErrConfig)
	}
}

func (provider) NewSink(name string, res config.Resource, _ config.Connection) (resource.Sink, error) {
	if res.Path == "" {
		return nil, fmt.Errorf("%s: file resources need a path: %w", name, resource.ErrConfig)
	}
	switch res.Type {
	case "csv":
		return &csvSink{id: name, path: res.Path, sep: ','}, nil
	case "euro_csv":
		return &csvSink{id: name, path: res.Path, sep: ';', decimalComma: true}, nil
	case "text_file", "binary_file":
		return &rawSink{id: name, path: res.Path, typ: res.Type}, nil
	default:
		return nil, fmt.Errorf("%s: file provider cannot serve type %q: %w", name, res.Type, resource.ErrConfig)
	}
}
