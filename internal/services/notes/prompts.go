package notes

import "strings"

// Note styles.
const (
	StyleDetailed     = "detailed"
	StyleSummary      = "summary"
	StyleBulletPoints = "bullet_points"
	StyleFlashcards   = "flashcards"
)

// SystemPrompt frames every note request.
const SystemPrompt = "You are a helpful assistant that creates clear, well-structured study notes."

var stylePrompts = map[string]string{
	StyleDetailed: `Create detailed, well-organized notes from this video transcript.
Include:
- Main topics and subtopics
- Key concepts and definitions
- Important examples
- Action items or takeaways
Format with clear headers and bullet points.`,

	StyleSummary: `Create a concise summary of this video transcript.
Focus on the main ideas and key takeaways.
Keep it brief but comprehensive.`,

	StyleBulletPoints: `Convert this transcript into clear bullet points.
Organize by main topics.
Each point should be concise and informative.`,

	StyleFlashcards: `Create flashcard-style Q&A pairs from this transcript.
Format each as:
Q: [Question]
A: [Answer]

Focus on key concepts, definitions, and important facts.
Make questions clear and answers concise.`,
}

// Styles lists the supported note styles.
func Styles() []string {
	return []string{StyleDetailed, StyleSummary, StyleBulletPoints, StyleFlashcards}
}

// ValidStyle reports whether style names a known prompt.
func ValidStyle(style string) bool {
	_, ok := stylePrompts[strings.ToLower(strings.TrimSpace(style))]
	return ok
}

// UserPrompt builds the user message for style. Unknown styles fall back to
// the detailed prompt.
func UserPrompt(style, transcript string) string {
	prompt, ok := stylePrompts[strings.ToLower(strings.TrimSpace(style))]
	if !ok {
		prompt = stylePrompts[StyleDetailed]
	}
	return prompt + "\n\nTranscript:\n" + strings.TrimSpace(transcript)
}
