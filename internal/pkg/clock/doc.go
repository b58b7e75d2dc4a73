// Package clock lets business code ask for "now" through an interface so
// expiry checks can be driven by tests.
package clock
