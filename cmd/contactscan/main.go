// Package main provides the entry point for the ContactScan CLI.
//
// ContactScan discovers contact email addresses for social-media
// identities from their bios, linked websites and conventional address
// patterns, verifies them against DNS and SMTP, and reduces the result to
// one best address per identity.
//
// Usage:
//
//	contactscan scan --profiles profiles.json
//	contactscan scan --profiles profiles.csv --usernames handles.txt --smtp-verify
//	contactscan reduce --in emails.csv --out emails_clean.csv
//
// See --help for all available options.
package main

// main is the entry point for ContactScan.
func main() {
	Execute()
}
