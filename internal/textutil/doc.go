// Package textutil provides text processing utilities for fingerprinting,
// similarity, and ASCII folding.
//
// The primary use cases are:
//   - Creating token-based fingerprints from title fragments for comparison
//   - Computing cosine similarity between fingerprints during fuzzy matching
//   - Folding accented glyphs to their plain ASCII equivalents
//
// Fingerprints use term frequency vectors normalized for efficient comparison.
// The tokenization process lowercases text and splits on non-alphanumeric
// characters. Short tokens are kept: single-word titles like "Up" or "It"
// are common in release names.
package textutil
