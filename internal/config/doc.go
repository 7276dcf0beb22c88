// Package config loads the smartcommits configuration for the repository
// the process is running in.
//
// Loading is a fixed sequence with no way back:
//  1. Locate the repository root by walking up to a .git entry.
//  2. Resolve .commitgen.yml and .env inside the root.
//  3. Install log redaction.
//  4. Start from the built-in defaults ([DefaultMap]).
//  5. Deep-merge .commitgen.yml on top ([Merge]); the file is parsed as
//     plain data with size, depth and node-count limits.
//  6. Apply KEY=value pairs from .env to an [EnvSink].
//  7. Apply command-line overrides and validate every bounded field.
//
// Any failure aborts the whole load with a *secerr.SecurityError; no
// partially merged configuration is ever returned. Use [Load] or a
// [Loader] to obtain a [Loaded] value.
package config
