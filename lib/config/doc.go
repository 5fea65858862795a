// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for Docket.
//
// An issue root is a .docket directory, normally at the top of a
// source tree. [FindRoot] discovers it by walking up from a starting
// directory, the same way git finds .git. Configuration lives in
// config.yaml inside the root; a root without a config file uses
// [Default] values, so hand-made roots keep working.
//
// Environment variables never override config values. The file is the
// single source of truth for its root.
//
// Key exports:
//
//   - [Config] -- settings struct (currently the index section)
//   - [Default] -- a Config with stock values
//   - [FindRoot] -- locate the nearest .docket directory
//   - [Load] and [Save] -- read and write <root>/config.yaml
package config
