// Package gitrepo reduces the repository references users paste (owner/repo,
// HTTPS clone URLs, SSH remotes) to a single owner/repo identifier.
package gitrepo
