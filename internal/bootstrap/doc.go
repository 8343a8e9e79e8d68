// Package bootstrap wires a fresh or restarted process up to a usable
// state: it loads and validates the embedded seed fixtures, hashes seed
// credentials, writes the durable records, and drives the login, restore
// and logout glue that sits between storage and the dispatcher.
//
// The reducer never reads storage. Everything a transition needs (the
// directory, the viewer's collection, a corporate admin's collection) is
// loaded here and carried in the action payload.
package bootstrap
