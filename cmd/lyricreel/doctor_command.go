package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lyricreel/internal/deps"
	"lyricreel/internal/preflight"
	"lyricreel/internal/stagecmd"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var network bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, stage commands, and external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := newPrinter(out)
			problems := 0

			p.section("Directories")
			for _, r := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					problems++
				}
				p.status(r.Name, kind, r.Detail)
			}

			p.println("")
			p.section("Stages")
			for _, h := range stagecmd.Pipeline(cfg) {
				health := h.HealthCheck(cmd.Context())
				if health.Ready {
					p.status(health.Name, statusOK, "ready")
					continue
				}
				problems++
				p.status(health.Name, statusError, health.Detail)
			}

			p.println("")
			p.section("Tools")
			rows := [][]string{}
			for _, status := range preflight.CheckSystemDeps(cfg) {
				state, version := "missing", ""
				switch {
				case status.Available:
					state = "ok"
					if status.Name == "FFmpeg" {
						version, _ = deps.ProbeVersion(cmd.Context(), status.Command, "-version")
					} else if status.Name == "yt-dlp" {
						version, _ = deps.ProbeVersion(cmd.Context(), status.Command, "--version")
					}
				case status.Optional:
					state = "optional, missing"
				default:
					problems++
				}
				detail := status.Detail
				if status.Available {
					detail = status.Command
				}
				rows = append(rows, []string{status.Name, state, truncate(version, 40), detail})
			}
			fmt.Fprintln(out, renderTable([]column{
				{header: "Tool"},
				{header: "State"},
				{header: "Version"},
				{header: "Detail", width: 60},
			}, rows))

			if network {
				p.println("")
				p.section("Network")
				r := preflight.CheckMusicBrainz(cmd.Context(), cfg.MusicBrainz.BaseURL, cfg.MusicBrainz.UserAgent)
				kind := statusOK
				if !r.Passed {
					kind = statusWarn
				}
				p.status(r.Name, kind, r.Detail)
			}

			if problems > 0 {
				return fmt.Errorf("doctor found %d problem(s)", problems)
			}
			p.println("", "All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&network, "network", false, "Also check that MusicBrainz is reachable")
	return cmd
}
