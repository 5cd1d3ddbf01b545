// Package githubcli wraps the GitHub CLI for profile_scripts workflows.
//
// It issues gh api requests for repositories, contents, languages, topics,
// Pages sites, branches and commits, decodes the responses into normalized
// types immediately, and classifies failures so callers can tell a skippable
// per-repository problem from a connection-level one.
package githubcli
