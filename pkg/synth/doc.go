// Package synth produces placeholder values. Generator.Synthesize derives a
// value from a control's kind alone and is the planner's fallback when no
// caller-supplied value applies. Generator.Persona builds a complete,
// internally consistent DataBag of Russian test data.
//
// Randomness is uniform and not cryptographic. Pass a seeded *rand.Rand to
// get reproducible output; a Generator is not safe for concurrent use because
// *rand.Rand is not.
package synth
