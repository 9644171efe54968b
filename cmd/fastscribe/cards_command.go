package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fastscribe/internal/flashcards"
)

func newCardsCommand(ctx *commandContext) *cobra.Command {
	var questionMarker string
	var answerMarker string

	cmd := &cobra.Command{
		Use:         "cards [file]",
		Short:       "Parse Q:/A: flashcards from notes text (file or stdin)",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			cards := flashcards.NewParser(questionMarker, answerMarker).Parse(text)
			return renderCards(cmd, ctx, cards)
		},
	}

	cmd.Flags().StringVar(&questionMarker, "question-marker", flashcards.QuestionMarker, "Line prefix that starts a question")
	cmd.Flags().StringVar(&answerMarker, "answer-marker", flashcards.AnswerMarker, "Line prefix that starts an answer")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

// renderCards prints cards as JSON, a table on terminals, or plain Q:/A:
// blocks otherwise.
func renderCards(cmd *cobra.Command, ctx *commandContext, cards []flashcards.Card) error {
	if ctx.jsonOutput() {
		if cards == nil {
			cards = []flashcards.Card{}
		}
		return writeJSON(cmd, cards)
	}

	out := cmd.OutOrStdout()
	if len(cards) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No flashcards found")
		return nil
	}

	if isTerminal(out) {
		rows := make([][]string, 0, len(cards))
		for i, card := range cards {
			rows = append(rows, []string{strconv.Itoa(i + 1), card.Question, card.Answer})
		}
		fmt.Fprintln(out, renderTable([]column{
			{header: "#", align: alignRight},
			{header: "Question", width: 50},
			{header: "Answer", width: 60},
		}, rows))
		return nil
	}

	var b strings.Builder
	for i, card := range cards {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s\n%s %s\n", flashcards.QuestionMarker, card.Question, flashcards.AnswerMarker, card.Answer)
	}
	_, err := io.WriteString(out, b.String())
	return err
}
