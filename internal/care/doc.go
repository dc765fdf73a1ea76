// Package care derives scheduling facts from a herd's raw records: vaccine
// due dates, breeding readiness, status tags, target weights and calendar
// occurrences.
//
// Every function is pure. Callers prefetch the records they need and pass
// the current calendar day explicitly, so results are deterministic.
package care
