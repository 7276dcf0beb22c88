// Package secexec runs external programs under a fixed policy: the command
// is a vector of discrete arguments and never passes through a shell, the
// working directory must exist, output is captured, and every call carries
// a deadline after which the child is killed.
//
// Failures are returned as *secerr.SecurityError values whose message holds
// the failure category and exit status only. Raw stderr stays on the
// wrapped *secerr.ProcessError for redacted debug logging.
//
// [WriteFile] is the matching primitive for writing files with restrictive
// permissions.
package secexec
