package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fastscribe/internal/transcribe"
	"fastscribe/internal/videoref"
)

type transcriptOutput struct {
	transcribe.Transcript
	Cached bool `json:"cached"`
}

func addTranscribeFlags(cmd *cobra.Command, req *transcribeRequest) {
	cmd.Flags().StringVarP(&req.language, "language", "l", "", "Language hint (e.g. en, es, Spanish)")
	cmd.Flags().StringVar(&req.cookies, "cookies", "", "Browser name or cookies.txt path for authenticated downloads")
	cmd.Flags().BoolVar(&req.local, "local", false, "Allow the on-host WhisperX engine as the last backend")
	cmd.Flags().BoolVar(&req.noCache, "no-cache", false, "Ignore cached transcripts for this video")
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var req transcribeRequest
	var outputPath string

	cmd := &cobra.Command{
		Use:   "transcribe <url-or-id>",
		Short: "Download a video's audio and transcribe it",
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

			pool, _ := ctx.ensureCredentials()
			transcript, cached, err := obtainTranscript(ctx.requestContext(cmd), cfg, pool, logger, ref, req)
			if err != nil {
				return err
			}

			if path := strings.TrimSpace(outputPath); path != "" {
				if err := os.WriteFile(path, []byte(transcript.Text+"\n"), 0o644); err != nil {
					return fmt.Errorf("write transcript: %w", err)
				}
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, transcriptOutput{Transcript: transcript, Cached: cached})
			}
			if outputPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), transcript.Text)
			}
			return nil
		},
	}

	addTranscribeFlags(cmd, &req)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the transcript text to a file")
	return cmd
}
