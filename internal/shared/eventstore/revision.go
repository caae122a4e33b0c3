package eventstore

// ExpectedRevision is the concurrency token supplied on append.
// The zero value is Any (no check, last writer wins).
type ExpectedRevision struct {
	kind     revisionKind
	position uint64
}

type revisionKind int

const (
	revisionAny revisionKind = iota
	revisionNoStream
	revisionExact
)

// Any performs no concurrency check.
func Any() ExpectedRevision {
	return ExpectedRevision{kind: revisionAny}
}

// NoStream requires that the stream does not exist yet.
func NoStream() ExpectedRevision {
	return ExpectedRevision{kind: revisionNoStream}
}

// Exact requires the stream's current revision to equal position.
func Exact(position uint64) ExpectedRevision {
	return ExpectedRevision{kind: revisionExact, position: position}
}

func (r ExpectedRevision) IsAny() bool      { return r.kind == revisionAny }
func (r ExpectedRevision) IsNoStream() bool { return r.kind == revisionNoStream }

// Position returns the concrete revision and whether the token carries one.
func (r ExpectedRevision) Position() (uint64, bool) {
	if r.kind != revisionExact {
		return 0, false
	}
	return r.position, true
}

// Matches checks the token against the stream's observed state.
func (r ExpectedRevision) Matches(streamExists bool, currentRevision uint64) bool {
	switch r.kind {
	case revisionAny:
		return true
	case revisionNoStream:
		return !streamExists
	case revisionExact:
		return streamExists && currentRevision == r.position
	default:
		return false
	}
}
