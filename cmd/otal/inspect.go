package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/ota-layer/internal/builder"
	"github.com/conn-castle/ota-layer/internal/messages"
	"github.com/conn-castle/ota-layer/internal/partition"
	"github.com/conn-castle/ota-layer/internal/plan"
	"github.com/conn-castle/ota-layer/internal/terminal"
)

func addInspectFlags(cmd *cobra.Command, flags *buildFlags) {
	cmd.Flags().StringVar(&flags.source, flagSource, "", messages.FlagSource)
	cmd.Flags().StringVar(&flags.target, flagTarget, "", messages.FlagTarget)
	_ = cmd.MarkFlagRequired(flagTarget)
}

func newPlanCmd(opts *rootOptions) *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:   messages.PlanUse,
		Short: messages.PlanShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(opts, cmd)
			if err != nil {
				return err
			}
			ops, err := builder.Plan(builder.RealSystem{}, req)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), ops)
			return nil
		},
	}
	addInspectFlags(cmd, flags)
	return cmd
}

// printPlan writes one line per operation, colored by action when out is a terminal.
func printPlan(out io.Writer, ops []partition.Operation) {
	if len(ops) == 0 {
		_, _ = fmt.Fprintln(out, messages.PlanNoOperations)
		return
	}
	colors := map[string]*color.Color{
		plan.ActionWrite:  color.New(color.FgGreen),
		plan.ActionDiff:   color.New(color.FgYellow),
		plan.ActionRemove: color.New(color.FgRed),
	}
	styled := terminal.IsTerminal(out)
	manifest := plan.NewManifest("")
	for _, op := range ops {
		manifest.RecordDifference(op)
		action := plan.Action(op)
		c := colors[action]
		if styled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		_, _ = fmt.Fprintf(out, messages.PlanLineFmt, c.Sprint(action), op.Partition)
	}
	summary := manifest.Summary()
	_, _ = fmt.Fprintf(out, messages.BuildSummaryFmt, len(ops), summary.Write, summary.Diff, summary.Remove)
}

func newScriptCmd(opts *rootOptions) *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:   messages.ScriptUse,
		Short: messages.ScriptShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(opts, cmd)
			if err != nil {
				return err
			}
			res, err := builder.Render(builder.RealSystem{}, req)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), res.Script.String())
			return nil
		},
	}
	addInspectFlags(cmd, flags)
	return cmd
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	flags := &buildFlags{}
	var against string
	var diffLines int
	cmd := &cobra.Command{
		Use:   messages.CheckUse,
		Short: messages.CheckShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(opts, cmd)
			if err != nil {
				return err
			}
			drift, err := builder.Check(builder.RealSystem{}, req, against, diffLines)
			if errors.Is(err, builder.ErrScriptDrift) {
				printDiff(cmd.OutOrStdout(), drift.UnifiedDiff)
				return err
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.CheckMatchFmt, against)
			return nil
		},
	}
	addInspectFlags(cmd, flags)
	cmd.Flags().StringVar(&against, flagAgainst, "", messages.FlagAgainst)
	cmd.Flags().IntVar(&diffLines, flagDiffLines, builder.DefaultDiffMaxLines, messages.FlagDiffLines)
	_ = cmd.MarkFlagRequired(flagAgainst)
	return cmd
}

// printDiff writes a unified diff, coloring removed and added lines when out is a terminal.
func printDiff(out io.Writer, diff string) {
	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)
	if !terminal.IsTerminal(out) {
		removed.DisableColor()
		added.DisableColor()
	}
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			_, _ = fmt.Fprint(out, line)
		case strings.HasPrefix(line, "-"):
			_, _ = removed.Fprint(out, line)
		case strings.HasPrefix(line, "+"):
			_, _ = added.Fprint(out, line)
		default:
			_, _ = fmt.Fprint(out, line)
		}
	}
}
