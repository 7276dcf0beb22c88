// Package selftest runs the built-in security checks against the
// validator, loader, logger, hook installer and message cleaner.
//
// Every check works in its own scratch repository under Options.TempDir
// and reports one Result. A check that panics is reported as ERROR rather
// than aborting the run.
package selftest
