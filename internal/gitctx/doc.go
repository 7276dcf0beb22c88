// Package gitctx reads staged changes and repository state and records
// commits, running git through the secexec wrapper with discrete
// arguments.
//
// Staged diffs are split per file, filtered by exclude globs
// ([MatchesAny], doublestar syntax) and truncated to a byte budget
// before they are handed to a provider.
package gitctx
