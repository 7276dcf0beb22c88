// Package cli wires together the Cobra command tree for the smartcommits
// binary.
//
// It defines the root command and all subcommands (install, uninstall,
// generate, commit, config, models, test, cache, docs, security-test,
// version), loads the repository configuration, invokes the generator, and
// returns deterministic exit codes.
package cli
