// Package driving provides interfaces for the use cases the
// application exposes (primary/inbound ports). The HTTP surface and
// the scheduler depend on these rather than on concrete services.
package driving
