// Package resolver maps parsed filenames to ranked subtitle candidates.
//
// Resolution is read-only and side-effect-free: any number of calls may run
// concurrently against the same index. The resolver distinguishes three
// terminal conditions callers must handle separately: a parse failure (the
// filename yielded no usable title), a definitive not-found (the title or
// episode is not indexed and no fuzzy match clears the threshold), and a
// successful result whose only candidates are cinema recordings, which is
// surfaced as a success annotated with a quality warning.
package resolver
