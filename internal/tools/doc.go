// Package tools scans a GitHub user's repositories for small browser tools and
// publishes them as a card grid in the TOOLS_LIST region of a profile README.
//
// A repository is a tool when its root holds at least one HTML file. The scan
// is sequential: each repository resolves to a kept ToolRecord, a skip, or an
// abort when GitHub can no longer be reached.
package tools
