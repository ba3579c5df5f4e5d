// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

// getValidator returns the singleton validator. Field names in error
// messages come from koanf tags so they match the YAML keys operators
// actually wrote.
func getValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		structValidator = v
	})
	return structValidator
}

// validateStruct runs the tag-declared constraints and converts the
// first failure to an error naming the config key.
func validateStruct(c *Config) error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validating config: %w", err)
	}

	return fieldError(fieldErrs[0])
}

// fieldError renders one validation failure. The namespace starts with
// the struct type name, which means nothing to an operator, so it is
// stripped.
func fieldError(e validator.FieldError) error {
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "min":
		return fmt.Errorf("%s must be at least %s, got %v", field, e.Param(), e.Value())
	case "max":
		return fmt.Errorf("%s must be at most %s, got %v", field, e.Param(), e.Value())
	case "gt":
		return fmt.Errorf("%s must be greater than %s, got %v", field, e.Param(), e.Value())
	default:
		return fmt.Errorf("%s fails %s validation", field, e.Tag())
	}
}
