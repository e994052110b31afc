package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lyricreel/internal/catalog"
	"lyricreel/internal/musicbrainz"
	"lyricreel/internal/services/toolrunner"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Album catalog utilities",
	}
	catalogCmd.AddCommand(newCatalogValidateCommand())
	catalogCmd.AddCommand(newCatalogFetchCommand(ctx))
	return catalogCmd
}

func newCatalogValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate <catalog.json>",
		Short:       "Check a catalog file and list its track ids",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s - %s", cat.Artist, cat.Album)
			if cat.ReleaseDate != "" {
				fmt.Fprintf(out, " (%s)", cat.ReleaseDate)
			}
			fmt.Fprintf(out, ": %d tracks\n", cat.Len())

			rows := make([][]string, 0, cat.Len())
			for _, track := range cat.Tracks {
				rows = append(rows, []string{
					strconv.Itoa(track.Position),
					track.Title,
					track.Length,
					track.ID(),
					yesNo(track.SourceHint != ""),
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{header: "#", align: alignRight},
				{header: "Title", width: 40},
				{header: "Length", align: alignRight},
				{header: "Track ID"},
				{header: "Hint"},
			}, rows))
			fmt.Fprintln(out, "Catalog valid")
			return nil
		},
	}
}

func newCatalogFetchCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var hints bool

	cmd := &cobra.Command{
		Use:   "fetch <artist> <album>",
		Short: "Build a catalog file from MusicBrainz",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			client, err := musicbrainz.New(cfg.MusicBrainz.BaseURL, cfg.MusicBrainz.UserAgent,
				time.Duration(cfg.MusicBrainz.TimeoutSeconds)*time.Second)
			if err != nil {
				return err
			}
			fetcher := &musicbrainz.Fetcher{Client: client, Logger: logger}
			if hints || cfg.SourceHints.Enabled {
				fetcher.Hints = musicbrainz.YTDLP{Binary: cfg.SourceHints.YTDLPBinary, Exec: toolrunner.CommandExecutor{}}
			}

			cat, err := fetcher.Fetch(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = "."
			}
			path := musicbrainz.FileName(dir, cat.Artist, cat.Album)
			if err := cat.Save(path); err != nil {
				return err
			}

			found := 0
			for _, track := range cat.Tracks {
				if track.SourceHint != "" {
					found++
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved %s\n", path)
			fmt.Fprintf(out, "Album: %s\nArtist: %s\nRelease: %s\nTracks: %d\n", cat.Album, cat.Artist, cat.ReleaseDate, cat.Len())
			if fetcher.Hints != nil {
				fmt.Fprintf(out, "Source hints found: %d/%d\n", found, cat.Len())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "dir", "d", "", "Directory for the catalog file (default current directory)")
	cmd.Flags().BoolVar(&hints, "hints", false, "Search yt-dlp for a source hint per track")
	return cmd
}
