// Package sanitizer normalises raw user input before validation and storage.
//
// The helpers are small, stateless functions built on the standard library.
// They are meant to run at the request boundary so the rest of the system only
// ever sees canonical values (lower-cased, trimmed email addresses and the
// like).
package sanitizer
