// Package cli wires together the Cobra command tree for the aireview binary.
//
// The root command runs a review of the current branch against its base.
// Flags are bound into viper on top of the environment and the config file,
// and every failure is mapped to a deterministic exit code.
package cli
