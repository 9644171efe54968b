// Package videoref canonicalizes user-supplied video references.
//
// Short links, watch URLs, embed URLs and bare identifiers all resolve to the
// same Reference carrying the 11 character video identifier. Everything
// downstream (download, cache, logging) keys on Reference.ID, never on the raw
// input.
package videoref
