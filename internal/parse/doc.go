// Package parse extracts structured signals from raw release filenames.
//
// Release names have no fixed grammar: separators vary, quality markers are
// inconsistent, and titles are interleaved with source tags. The package
// applies a fixed pipeline: normalization (path/extension stripping, separator
// folding, case folding), then independent signal extractors for the
// season/episode token, the cinema-recording vocabulary, and the title
// fragment. The result is a Filename value which downstream resolution treats
// as the complete, immutable description of the input.
//
// All extractors are pure functions of the normalized string. Malformed or
// missing signals are absent values, not errors; the only parse error is a
// filename that yields no usable title fragment at all.
package parse
