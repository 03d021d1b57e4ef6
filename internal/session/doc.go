// Package session persists the mutable review state for all poles in a
// SQLite database inside the working directory, and converts it to and from
// the portable JSON session document used to hand a review off between
// machines or working copies.
package session
