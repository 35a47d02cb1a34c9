// Package record joins identities with their verified candidate emails and
// reduces the resulting candidate log to one best record per handle.
package record
