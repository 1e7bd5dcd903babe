// Package timeout bounds every query with a deadline, so a stalled backend
// never blocks the caller indefinitely. Synchronous operations are cancelled
// when they return; streamed operations keep the deadline alive until the
// stream is drained, fails, or is abandoned.
//
//	bounded := timeout.New(client, 30*time.Second)
//	answer, _, err := bounded.QueryResponse(ctx, prompt, api)
package timeout
