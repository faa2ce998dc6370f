// Package llm provides a small provider-agnostic chat SDK.
//
// Design goals:
//   - Stable domain model: callers build requests using canonical types
//     (ChatRequest, Message) and receive canonical responses.
//   - Explicit streaming: providers emit StreamEvent values (text deltas,
//     usage, done) until io.EOF; callers can reconstruct final responses
//     with Accumulator or DrainStream.
//   - Explicit provider selection: backends self-register under a tag via
//     Register, and are resolved once at construction time with NewProvider.
//
// Provider implementations live under llm/providers and are responsible for
// mapping between the canonical model and each provider's wire format.
package llm
