// Package errors provides classified errors for the Logbook service.
//
// Every error carries a category (what subsystem produced it), a severity
// (how bad it is), and a retry strategy (what the caller should do next).
// The HTTP adapter maps categories onto response status codes so handlers
// never hand-pick codes.
package errors
