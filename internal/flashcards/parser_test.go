package flashcards_test

import (
	"reflect"
	"strings"
	"testing"

	"fastscribe/internal/flashcards"
)

func TestParseBasicPairs(t *testing.T) {
	text := "Q: What is Go?\nA: A programming language.\n\nQ: Who made it?\nA: Google."
	got := flashcards.Parse(text)
	want := []flashcards.Card{
		{Question: "What is Go?", Answer: "A programming language."},
		{Question: "Who made it?", Answer: "Google."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestParseJoinsContinuationLines(t *testing.T) {
	text := "Q: Define\n  a goroutine\nA: A lightweight\nthread managed\n   by the runtime"
	got := flashcards.Parse(text)
	want := []flashcards.Card{{Question: "Define a goroutine", Answer: "A lightweight thread managed by the runtime"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestParseDropsDanglingQuestion(t *testing.T) {
	text := "Q: Orphan question\nQ: Real question\nA: Real answer"
	got := flashcards.Parse(text)
	want := []flashcards.Card{{Question: "Real question", Answer: "Real answer"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestParseAnswerOverwrite(t *testing.T) {
	got := flashcards.Parse("Q: q\nA: first\nA: second")
	want := []flashcards.Card{{Question: "q", Answer: "second"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestParseBlankLineBeforeAnswerIsIgnored(t *testing.T) {
	got := flashcards.Parse("Q: spaced out\n\nA: still pairs")
	want := []flashcards.Card{{Question: "spaced out", Answer: "still pairs"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestParseBlankLineClosesCard(t *testing.T) {
	got := flashcards.Parse("Q: q1\nA: a1\n\ntrailing prose that belongs nowhere\nQ: q2\nA: a2")
	want := []flashcards.Card{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestParseIgnoresPreambleAndEmptyHalves(t *testing.T) {
	text := "Here are your flashcards:\nA: answer without question\n\nQ:\nA: answer for empty question\n\nQ: question with empty answer\nA:\n"
	if got := flashcards.Parse(text); len(got) != 0 {
		t.Fatalf("expected no cards, got %#v", got)
	}
}

func TestParseEmptyAndMarkerlessInput(t *testing.T) {
	for _, text := range []string{"", "   \n\n", "just some notes\nwith no markers"} {
		if got := flashcards.Parse(text); len(got) != 0 {
			t.Fatalf("Parse(%q) = %#v, want none", text, got)
		}
	}
}

func TestParseHandlesCRLF(t *testing.T) {
	got := flashcards.Parse("Q: one\r\nA: two\r\n")
	want := []flashcards.Card{{Question: "one", Answer: "two"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestCustomMarkers(t *testing.T) {
	parser := flashcards.NewParser("Question:", "Answer:")
	got := parser.Parse("Question: capital of France?\nAnswer: Paris")
	want := []flashcards.Card{{Question: "capital of France?", Answer: "Paris"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestParseKeepsCardsAfterVeryLongLine(t *testing.T) {
	long := strings.Repeat("x", 2<<20)
	got := flashcards.Parse("Q: First?\nA: " + long + "\n\nQ: Second?\nA: Two.")
	if len(got) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(got))
	}
	if got[0].Answer != long || got[1].Question != "Second?" || got[1].Answer != "Two." {
		t.Fatalf("unexpected cards after long line: %q / %q", got[1].Question, got[1].Answer)
	}
}
