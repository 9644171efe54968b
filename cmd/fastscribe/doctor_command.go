package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fastscribe/internal/config"
	"fastscribe/internal/deps"
	"fastscribe/internal/preflight"
	"fastscribe/internal/transcribe"
)

type doctorReport struct {
	Backends     []string           `json:"backends"`
	Checks       []preflight.Result `json:"checks"`
	Dependencies []deps.Status      `json:"dependencies"`
	Healthy      bool               `json:"healthy"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check binaries, directories, and backend reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			report := buildDoctorReport(ctx, cmd, cfg, local)
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printDoctorReport(cmd.OutOrStdout(), report)
			}
			if !report.Healthy {
				return errors.New("doctor: one or more required checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Include the local engine in the backend plan")
	return cmd
}

func buildDoctorReport(ctx *commandContext, cmd *cobra.Command, cfg *config.Config, local bool) doctorReport {
	report := doctorReport{
		Checks:       preflight.RunAll(ctx.requestContext(cmd), cfg),
		Dependencies: preflight.CheckSystemDeps(cfg),
		Healthy:      true,
	}

	pool, _ := ctx.ensureCredentials()
	orchestrator := transcribe.New(nil, buildBackends(cfg, pool))
	for _, kind := range orchestrator.Plan(transcribe.Options{Local: local || cfg.Local.Enabled}) {
		report.Backends = append(report.Backends, string(kind))
	}

	for _, check := range report.Checks {
		if !check.Passed {
			report.Healthy = false
		}
	}
	if len(deps.MissingRequired(report.Dependencies)) > 0 {
		report.Healthy = false
	}
	if len(report.Backends) == 0 {
		report.Healthy = false
	}
	return report
}

func printDoctorReport(out io.Writer, report doctorReport) {
	plan := "none available"
	if len(report.Backends) > 0 {
		plan = strings.Join(report.Backends, " → ")
	}
	fmt.Fprintf(out, "Backend plan: %s\n\n", plan)

	checkRows := make([][]string, 0, len(report.Checks))
	for _, check := range report.Checks {
		checkRows = append(checkRows, []string{check.Name, passLabel(check.Passed, false), check.Detail})
	}
	fmt.Fprintln(out, renderTable([]column{
		{header: "Check"},
		{header: "Status"},
		{header: "Detail", width: 70},
	}, checkRows))
	fmt.Fprintln(out)

	depRows := make([][]string, 0, len(report.Dependencies))
	for _, dep := range report.Dependencies {
		detail := dep.Detail
		if detail == "" {
			detail = dep.Description
		}
		command := dep.Command
		if dep.Path != "" {
			command = dep.Path
		}
		depRows = append(depRows, []string{dep.Name, command, passLabel(dep.Available, dep.Optional), yesNo(dep.Optional), detail})
	}
	fmt.Fprintln(out, renderTable([]column{
		{header: "Dependency"},
		{header: "Command", width: 40},
		{header: "Status"},
		{header: "Optional"},
		{header: "Detail", width: 50},
	}, depRows))
}

func passLabel(ok, optional bool) string {
	switch {
	case ok:
		return "ok"
	case optional:
		return "missing (optional)"
	default:
		return "FAIL"
	}
}
