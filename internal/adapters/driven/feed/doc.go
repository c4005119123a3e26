// Package feed reads collector output and query definitions from files.
//
// Raw citation records arrive as JSON Lines, one domain.RawCitation per line.
// Tracked queries are maintained as a YAML document:
//
//	queries:
//	  - id: q-crm-pricing
//	    text: crm pricing comparison
//	    priority_weight: 2
//	    owner_domains: [acme.com]
package feed
