// Package guess synthesizes likely email addresses from a display name
// and a personal domain.
//
// Names are folded to ASCII letters first ("José Núñez" becomes
// "jose nunez"), then combined into the common corporate local-part
// patterns: first.last, firstlast, flast, firstl, first_last,
// first-last and first.
package guess
