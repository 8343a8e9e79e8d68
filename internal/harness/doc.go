// Package harness runs YAML-defined scenarios against a fully wired
// process: in-memory store, seeded fixtures, simulated payment and push
// providers, deterministic time and identifiers.
//
// A scenario logs in, dispatches a sequence of actions or glue flows,
// records every step's outcome, and finishes with assertions over the final
// state plus an optional golden snapshot of its canonical JSON form.
// Determinism comes from three substitutions: a stepping wall clock, a
// sequential id generator, and the simulated providers.
package harness
