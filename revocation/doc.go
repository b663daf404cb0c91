// Package revocation holds the token blacklist: token strings explicitly invalidated
// before their natural expiry, each remembered only for a bounded time-to-live.
//
// Two implementations satisfy [Store]:
//
//   - [RedisStore] keeps entries in a shared Redis instance and relies on native key
//     expiry. Concurrent revoke/lookup calls from many processes are serialized by Redis.
//   - [MemoryStore] keeps entries in process memory behind a mutex and evicts them with
//     per-entry timers.
//
// Callers pick one at startup; stores never switch backends at runtime. Keys are the
// SHA-256 of the token string, so raw tokens never reach Redis or logs.
package revocation
