// Package commitgen turns staged changes into a conventional commit
// message.
//
// A [Generator] reads the staged diff, redacts credentials from it,
// consults the message cache, asks the configured provider for a message,
// and cleans and validates the answer before returning it.
package commitgen
