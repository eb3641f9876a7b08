// Package config provides layered configuration for the workflow.
//
// Values resolve with clear precedence:
//  1. Environment variables (SPECFLOW_*, highest priority)
//  2. Local config (.specflow.yaml in the project root)
//  3. Global config (~/.config/specflow/config.yaml)
//  4. Built-in defaults (lowest priority)
//
// Load resolves the layers into a typed Config covering timeouts, retry
// behavior, and per-stage item limits. Each resolved value remembers the
// layer it came from, which Source exposes for diagnostics.
package config
