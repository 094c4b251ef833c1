// Package memory implements the inspectable learned-state surface and the
// correction feedback loop.
//
// Two kinds of memories exist. Sender memories are projections of the
// per-sender interaction counters: the learned importance weight plus an
// explanation of where it came from. Correction memories are mined on read
// from the user's corrected decisions, grouped into named patterns; a pattern
// becomes visible once at least two corrections back it.
//
// Every memory is editable and deletable by the user. Editing a sender memory
// rewrites its importance weight; editing a correction memory overrides the
// pattern's adjustment. Deleting tombstones the learned influence so future
// scoring falls back to defaults, without touching the decision audit trail
// the pattern was mined from.
//
// The package closes the loop by implementing both decision.Learner (invoked
// on every correction) and scoring.AdjustmentProvider (consulted on every
// score).
package memory
