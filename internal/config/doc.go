// Package config provides configuration structures and utilities for ContactScan.
// It defines the crawl, verification and output settings of a scan and
// loads overrides from the optional .contactscan YAML file.
package config
