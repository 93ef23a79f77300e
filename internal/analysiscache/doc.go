// Package analysiscache persists results of expensive per-video analysis
// operations so repeated requests do not redo the work.
//
// Each (subject, operation kind) pair maps to one JSON document named by a
// fingerprint of the pair. Entries carry their write timestamp and expire
// after a configurable age; expired entries are purged on next access and
// never served stale.
package analysiscache
