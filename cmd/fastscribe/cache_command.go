package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"fastscribe/internal/transcriptcache"
	"fastscribe/internal/videoref"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the transcript cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	return cacheCmd
}

func openCache(ctx *commandContext) (*transcriptcache.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Paths.CachePath == "" {
		return nil, errors.New("transcript cache: paths.cache_path is not set")
	}
	return transcriptcache.Open(cfg.Paths.CachePath)
}

type cacheListEntry struct {
	VideoID   string    `json:"video_id"`
	Hint      string    `json:"hint,omitempty"`
	Language  string    `json:"language,omitempty"`
	Backend   string    `json:"backend"`
	Chars     int       `json:"chars"`
	CreatedAt time.Time `json:"created_at"`
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached transcripts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			listed := make([]cacheListEntry, 0, len(entries))
			for _, entry := range entries {
				listed = append(listed, cacheListEntry{
					VideoID:   entry.VideoID,
					Hint:      entry.Hint,
					Language:  entry.Language,
					Backend:   entry.Backend,
					Chars:     utf8.RuneCountInString(entry.Text),
					CreatedAt: entry.CreatedAt,
				})
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, listed)
			}

			out := cmd.OutOrStdout()
			if len(listed) == 0 {
				fmt.Fprintln(out, "Transcript cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(listed))
			for _, entry := range listed {
				rows = append(rows, []string{
					entry.VideoID,
					dashIfEmpty(entry.Hint),
					dashIfEmpty(entry.Language),
					entry.Backend,
					strconv.Itoa(entry.Chars),
					entry.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{header: "Video"},
				{header: "Hint"},
				{header: "Language"},
				{header: "Backend"},
				{header: "Chars", align: alignRight},
				{header: "Cached"},
			}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to show (0 = all)")
	return cmd
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <url-or-id>",
		Short: "Remove every cached transcript for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := videoref.Resolve(args[0])
			if err != nil {
				return err
			}
			store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Delete(cmd.Context(), ref.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached transcript(s) for %s\n", removed, ref.ID)
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cached transcripts older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			store, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d cached transcript(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age threshold (e.g. 72h)")
	return cmd
}

func dashIfEmpty(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

