// Package language normalizes language hints.
//
// Callers pass whatever the user typed ("English", "en-US", "fra") and the
// transcription backends receive ISO 639-1 codes. Cloud responses that report
// a full language name are mapped back through the same table.
package language
