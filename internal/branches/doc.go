// Package branches publishes the branch activity dashboard of a repository.
//
// Service lists the branches of one owner/repo, resolves the latest commit of
// each, and splices a Markdown table into the BRANCH_ACTIVITY region of a
// README. CommandBuilder exposes the workflow as the branches Cobra command.
package branches
