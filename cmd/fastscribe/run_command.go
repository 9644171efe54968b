package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fastscribe/internal/flashcards"
	"fastscribe/internal/logging"
	"fastscribe/internal/services/notes"
	"fastscribe/internal/transcribe"
	"fastscribe/internal/videoref"
)

type runOutput struct {
	Transcript transcribe.Transcript `json:"transcript"`
	Cached     bool                  `json:"cached"`
	Style      string                `json:"style"`
	Notes      string                `json:"notes"`
	Cards      []flashcards.Card     `json:"cards,omitempty"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var req transcribeRequest
	var style string

	cmd := &cobra.Command{
		Use:   "run <url-or-id>",
		Short: "Transcribe a video and generate study notes or flashcards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := videoref.Resolve(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			style = strings.TrimSpace(style)
			if style == "" {
				style = cfg.Notes.Style
			}
			if !notes.ValidStyle(style) {
				return fmt.Errorf("unsupported style %q (expected one of %s)", style, strings.Join(notes.Styles(), ", "))
			}

			pool, poolErr := ctx.ensureCredentials()
			reqCtx := ctx.requestContext(cmd)
			transcript, cached, err := obtainTranscript(reqCtx, cfg, pool, logger, ref, req)
			if err != nil {
				return err
			}
			if poolErr != nil {
				return fmt.Errorf("generate notes: %w", poolErr)
			}

			logger.Info("generating notes",
				logging.String(logging.FieldEventType, "notes_generate"),
				logging.VideoID(ref.ID),
				logging.String("style", style),
			)
			text, err := generateNotes(reqCtx, cfg, pool, transcript.Text, style)
			if err != nil {
				return err
			}

			result := runOutput{Transcript: transcript, Cached: cached, Style: style, Notes: text}
			if style == notes.StyleFlashcards {
				result.Cards = flashcards.Parse(text)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			if style == notes.StyleFlashcards {
				return renderCards(cmd, ctx, result.Cards)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	addTranscribeFlags(cmd, &req)
	cmd.Flags().StringVar(&style, "style", "", "Note style: detailed, summary, bullet_points, or flashcards (default notes.style)")
	return cmd
}
