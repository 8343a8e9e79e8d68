// Package cli implements the binderd command line interface.
//
// Every command operates on a SQLite database holding the durable records
// and the action journal. Commands share the global --format and --verbose
// flags; JSON output follows the Response envelope so scripts can parse a
// single shape regardless of command.
package cli
