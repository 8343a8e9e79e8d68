// Package domain defines the entities of the binder content model: users and
// their roles, binders and their pages, shop bundles, subscription plans, and
// the transient notification record.
//
// Entities here are plain data. Every transition over them lives in the
// state package's reducer; nothing in this package mutates shared state.
//
// Conventions:
//   - Prices are integer cents (int64). Floats never appear in the model.
//   - Timestamps are unix milliseconds (int64); zero means unset.
//   - Collections are small and scanned linearly by id. This is a conscious
//     choice at this scale, not an oversight.
package domain
