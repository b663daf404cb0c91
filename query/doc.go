// Package query turns a flat map of HTTP query parameters into a bounded read query
// against the jobs collection: equality and range filters, case-insensitive search,
// projection, sort and skip/limit pagination.
//
// The builder never executes anything. It produces a [Query] expressed in bson types
// that a storage layer hands to the MongoDB driver, plus the effective page and limit a
// handler reports next to the total count.
//
// Malformed or adversarial input never fails a request: offending parameters are
// dropped or replaced by defaults and recorded as [ParamIssue] values for debug logging.
package query
