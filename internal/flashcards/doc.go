// Package flashcards turns loosely formatted question/answer text into
// structured cards.
//
// Input is typically LLM output using "Q:" and "A:" line markers. The parser
// tolerates wrapped lines, blank-line separators and stray prose, and never
// emits a card with an empty side.
package flashcards
