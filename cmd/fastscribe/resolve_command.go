package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fastscribe/internal/videoref"
)

type resolvedReference struct {
	Input    string `json:"input"`
	VideoID  string `json:"video_id"`
	WatchURL string `json:"watch_url"`
	EmbedURL string `json:"embed_url"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "resolve <url-or-id>",
		Short:       "Extract the video id from a YouTube URL",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := videoref.Resolve(args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, resolvedReference{
					Input:    ref.Raw,
					VideoID:  ref.ID,
					WatchURL: ref.URL(),
					EmbedURL: ref.EmbedURL(),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ref.ID)
			return nil
		},
	}
}
