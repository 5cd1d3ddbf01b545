// Package readme splices generated Markdown into delimited regions of a README.
//
// A region is bounded by a start and an end HTML comment marker that must each
// appear exactly once, start first. Splice replaces everything from the start
// marker through the end marker and keeps the markers verbatim. Updater applies
// a splice to a file, writing only when the region content actually changed.
package readme
