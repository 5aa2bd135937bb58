package graph

import "io"

// Payload is the duck-typed contract a materialized Target's data must
// satisfy: it must be able to write a stable, deterministic encoding of
// itself for cache-key hashing ("absorb the target's payload"). Concrete
// target types (see the targets package) implement this without graph
// ever being imported back by registry or targets; graph imports registry,
// so registry importing graph would create an import cycle.
type Payload interface {
	// AbsorbHash writes a deterministic byte representation of the
	// payload to w. Implementations must write the same bytes for
	// semantically-equal payloads and must never depend on map
	// iteration order or other non-deterministic Go behavior.
	AbsorbHash(w io.Writer) error
}
