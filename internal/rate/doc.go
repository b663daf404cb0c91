// Package rate provides Redis-backed fixed-window counters that throttle
// failed logins and password-reset mail requests.
//
// # Window semantics
//
// INCR plus EXPIRE on the first hit of a window. Keys:
//   - <prefix>:login:<email>   failed logins per account
//   - <prefix>:loginip:<ip>    failed logins per client IP
//   - <prefix>:fp:<email>      forgot-password requests per account
//
// Emails are lowercased and trimmed before they become part of a key.
package rate
