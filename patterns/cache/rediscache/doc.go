// Package rediscache provides a Redis-backed cache.Store, for sharing
// cached answers across processes. [Open] connects from a Redis URL and
// fails fast when the server is unreachable; [New] wraps an existing
// go-redis client. Entries live under the "llmwrap:cache:" prefix and
// expire server-side via Redis TTL.
package rediscache
