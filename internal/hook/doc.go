// Package hook installs and removes the smartcommits prepare-commit-msg
// hook and writes generated messages into git's message file.
//
// The hook section is delimited by marker comments so that it can live
// alongside other content in an existing hook and be replaced or removed
// without touching that content. The installed script never fails the
// commit: when generation fails the editor simply opens without a
// suggestion.
package hook
