// Package extract turns free text into email addresses.
//
// Text is first de-obfuscated (" at ", "[at]", "(at)" become "@" and
// " dot ", "[dot]", "(dot)" become "."), then scanned with a single
// address pattern. Results keep their original case and first-seen order.
//
// Extraction never fails: malformed or empty input yields an empty result.
package extract
