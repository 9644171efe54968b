package flashcards

import "strings"

// Default line markers.
const (
	QuestionMarker = "Q:"
	AnswerMarker   = "A:"
)

// Card is a single question/answer pair.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type state int

const (
	awaitingQuestion state = iota
	awaitingAnswer
)

// Parser recognises question and answer lines by prefix.
type Parser struct {
	questionMarker string
	answerMarker   string
}

// NewParser returns a parser using the supplied markers. Blank markers fall
// back to the defaults.
func NewParser(questionMarker, answerMarker string) *Parser {
	if strings.TrimSpace(questionMarker) == "" {
		questionMarker = QuestionMarker
	}
	if strings.TrimSpace(answerMarker) == "" {
		answerMarker = AnswerMarker
	}
	return &Parser{questionMarker: questionMarker, answerMarker: answerMarker}
}

// Parse extracts cards from text using the default markers.
func Parse(text string) []Card {
	return NewParser(QuestionMarker, AnswerMarker).Parse(text)
}

// Parse extracts every complete card from text in the order each was
// completed.
func (p *Parser) Parse(text string) []Card {
	var (
		cards    []Card
		current  = awaitingQuestion
		question string
		answer   string
	)

	flush := func() bool {
		if question == "" || answer == "" {
			return false
		}
		cards = append(cards, Card{Question: question, Answer: answer})
		question, answer = "", ""
		current = awaitingQuestion
		return true
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, p.questionMarker):
			flush()
			question = strings.TrimSpace(line[len(p.questionMarker):])
			answer = ""
			current = awaitingAnswer
		case strings.HasPrefix(line, p.answerMarker):
			answer = strings.TrimSpace(line[len(p.answerMarker):])
		case answer != "":
			answer = joinLine(answer, line)
		case current == awaitingAnswer:
			question = joinLine(question, line)
		}
	}
	flush()
	return cards
}

func joinLine(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + " " + line
}
