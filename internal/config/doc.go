// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for trebuchet.
//
// Configuration is resolved with precedence ENV > YAML file > defaults.
// Command-line flags are applied by the caller on top of the loaded value.
package config
