// Package ui turns gh lifecycle events into console log lines for
// human-readable runs, while structured runs keep the debug telemetry emitted
// by execshell.
package ui
