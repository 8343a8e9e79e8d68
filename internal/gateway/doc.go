// Package gateway holds the outward-facing service seams: the payment
// provider and the push scheduler, plus the glue flows (publish, purchase,
// upgrade) that call a provider and then dispatch the resulting
// transitions.
//
// Providers are interfaces with simulated implementations; the state core
// never talks to a provider directly, it only sees the provider's outputs
// carried in action payloads.
package gateway
