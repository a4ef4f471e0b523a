// Package errors provides structured error handling for the game engine.
//
// Errors carry a Code that maps onto the engine's failure taxonomy:
// transient generation failures, schema violations, invariant violations,
// plugin handler failures, and persistence corruption. Codes decide how a
// failure propagates: generation and schema problems are absorbed into
// fallback content, invariant violations abort the session, and persistence
// corruption surfaces to the caller as a load failure.
//
// Example usage:
//
//	if health < 0 {
//		return errors.InvariantViolationf("player health %d below zero", health)
//	}
//
//	if err := repo.Get(ctx, id); err != nil {
//		return errors.Wrap(err, "failed to load snapshot")
//	}
//
//	if errors.IsUnavailable(err) {
//		// retry, then fall back
//	}
package errors
