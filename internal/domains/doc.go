// Package domains classifies URLs and email domains.
//
// DomainOf reduces a URL to its registrable domain using the public
// suffix list (so "https://shop.example.co.uk/path" becomes
// "example.co.uk"). A Classifier then tells aggregator and social
// platforms apart from personal domains, and recognizes placeholder
// domains that never receive real mail.
package domains
