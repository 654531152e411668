// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). Services depend on these interfaces so
// tests can substitute fakes for the hosted drive, embedding, chat
// and vector-index services.
package driven
