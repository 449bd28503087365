// Package config loads and validates subtis configuration.
//
// Configuration is TOML with a Default/Load/normalize/Validate pipeline: the
// embedded sample documents every key, Load overlays a user file onto the
// defaults, normalization expands paths and clamps numeric ranges, and
// validation rejects unusable values with descriptive errors. The matcher
// thresholds and the recording/quality vocabularies live here so heuristics
// stay data-driven rather than hard-coded.
package config
