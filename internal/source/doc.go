// Package source provides the identities a scan runs over.
//
// A ProfileSource resolves a handle to its profile. FileSource is the
// bundled implementation and reads exported profiles from JSON, YAML or
// CSV files. LoadHandles reads the plain handle list that selects which
// profiles to scan.
package source
