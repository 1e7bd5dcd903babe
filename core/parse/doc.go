// Package parse turns raw model output into typed Go values and extracts
// fenced blocks out of it. Models routinely wrap JSON in narrative prose,
// markdown code fences, or schema-style envelopes, so the decoders here apply
// layered recovery (candidate extraction, automatic repair, envelope
// unwrapping, shape adaptation) before giving up with a typed error.
//
// [StringAs] and [Into] decode content into a value and wrap all failures in
// [ErrValidation]. [ExtractBlock] pulls a tagged code block out of content
// and wraps failures in [ErrFormat].
package parse
