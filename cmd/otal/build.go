package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conn-castle/ota-layer/internal/builder"
	"github.com/conn-castle/ota-layer/internal/messages"
)

const (
	flagSource    = "source"
	flagTarget    = "target"
	flagOutput    = "output"
	flagAgainst   = "against"
	flagDiffLines = "diff-lines"
	flagForce     = "force"
	flagPrevious  = "previous"
)

// buildFlags are the package inputs shared by the build and inspection commands.
type buildFlags struct {
	source string
	target string
	output string
}

func (f *buildFlags) request(opts *rootOptions, cmd *cobra.Command) (builder.Request, error) {
	profile, err := opts.loadProfile()
	if err != nil {
		return builder.Request{}, err
	}
	return builder.Request{
		Source:  f.source,
		Target:  f.target,
		Output:  f.output,
		Profile: profile,
		Log:     opts.logger(cmd),
	}, nil
}

func newFullCmd(opts *rootOptions) *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:   messages.FullUse,
		Short: messages.FullShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(opts, cmd)
			if err != nil {
				return err
			}
			res, err := builder.RunFull(builder.RealSystem{}, req)
			if err != nil {
				return err
			}
			printBuildResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.target, flagTarget, "", messages.FlagTarget)
	cmd.Flags().StringVarP(&flags.output, flagOutput, "o", "", messages.FlagOutput)
	_ = cmd.MarkFlagRequired(flagTarget)
	_ = cmd.MarkFlagRequired(flagOutput)
	return cmd
}

func newIncrementalCmd(opts *rootOptions) *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:   messages.IncrementalUse,
		Short: messages.IncrementalShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(opts, cmd)
			if err != nil {
				return err
			}
			res, err := builder.RunIncremental(builder.RealSystem{}, req)
			if err != nil {
				return err
			}
			printBuildResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.source, flagSource, "", messages.FlagSource)
	cmd.Flags().StringVar(&flags.target, flagTarget, "", messages.FlagTarget)
	cmd.Flags().StringVarP(&flags.output, flagOutput, "o", "", messages.FlagOutput)
	_ = cmd.MarkFlagRequired(flagSource)
	_ = cmd.MarkFlagRequired(flagTarget)
	_ = cmd.MarkFlagRequired(flagOutput)
	return cmd
}

func printBuildResult(out io.Writer, res *builder.Result) {
	summary := res.Manifest.Summary()
	_, _ = fmt.Fprintf(out, messages.BuildWroteFmt, res.Kind, res.Output)
	_, _ = fmt.Fprintf(out, messages.BuildSummaryFmt, len(res.Operations), summary.Write, summary.Diff, summary.Remove)
}
