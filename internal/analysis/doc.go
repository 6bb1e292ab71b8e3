// Package analysis post-processes recorded traces: amplitude spectra and
// step-response figures of a single column.
package analysis
