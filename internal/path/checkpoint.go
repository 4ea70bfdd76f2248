package path

// AtCheckpoint and HasCandidate are phantom tags for Checkpointed,
// statically distinguishing "only a confirmed position" from
// "confirmed position plus a pending speculative advance" (spec §3
// "Checkpointed<C>", §9 "CursorPosition with two atom positions").
type AtCheckpoint struct{}
type HasCandidate struct{}

// Checkpointed pairs a confirmed checkpoint cursor with an optional
// speculative candidate derived from it. The checkpoint always
// represents a confirmed match; a mismatch never updates it.
type Checkpointed[Tag any] struct {
	Checkpoint PathCursor[Matched]
	candidate  *PathCursor[Candidate]
}

// NewCheckpoint starts a Checkpointed with no candidate.
func NewCheckpoint(c PathCursor[Matched]) Checkpointed[AtCheckpoint] {
	return Checkpointed[AtCheckpoint]{Checkpoint: c}
}

// WithCandidate attaches a speculative advance derived from this
// checkpoint.
func (c Checkpointed[AtCheckpoint]) WithCandidate(cand PathCursor[Candidate]) Checkpointed[HasCandidate] {
	cp := cand
	return Checkpointed[HasCandidate]{Checkpoint: c.Checkpoint, candidate: &cp}
}

// Candidate returns the pending speculative cursor.
func (c Checkpointed[HasCandidate]) Candidate() PathCursor[Candidate] {
	return *c.candidate
}

// Confirm promotes the candidate into the new checkpoint, discarding
// the old one — used when a comparison at the candidate position
// succeeds.
func (c Checkpointed[HasCandidate]) Confirm() Checkpointed[AtCheckpoint] {
	return Checkpointed[AtCheckpoint]{Checkpoint: c.candidate.MarkMatch()}
}

// Reject drops the candidate, leaving the checkpoint exactly as it
// was before the speculative advance — used when a comparison at the
// candidate position fails; the checkpoint is never touched by a
// mismatch.
func (c Checkpointed[HasCandidate]) Reject() Checkpointed[AtCheckpoint] {
	return Checkpointed[AtCheckpoint]{Checkpoint: c.Checkpoint}
}

// CheckpointPosition returns the confirmed atom offset.
func (c Checkpointed[Tag]) CheckpointPosition() AtomPosition {
	return c.Checkpoint.Offset
}
