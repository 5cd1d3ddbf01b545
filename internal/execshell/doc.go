// Package execshell provides structured helpers for invoking the GitHub CLI.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions profile_scripts uses
// to run gh api requests in a testable manner.
package execshell
