// Package cli constructs the profile-scripts command-line interface. It wires
// the Cobra command hierarchy for the tools and branches generators to the
// layered configuration loader and the zap logger.
package cli
