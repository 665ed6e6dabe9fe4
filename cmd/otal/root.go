package main

import (
	"errors"
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/conn-castle/ota-layer/internal/device"
	"github.com/conn-castle/ota-layer/internal/logging"
	"github.com/conn-castle/ota-layer/internal/messages"
)

const (
	flagProfile = "profile"
	flagVerbose = "verbose"
	flagQuiet   = "quiet"
)

// rootOptions holds the persistent flags every subcommand reads.
type rootOptions struct {
	profile string
	verbose bool
	quiet   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose && opts.quiet {
				return errors.New(messages.RootFlagConflict)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("version", "V", false, messages.RootVersionFlag)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.profile, flagProfile, "", messages.RootFlagProfile)
	flags.BoolVarP(&opts.verbose, flagVerbose, "v", false, messages.RootFlagVerbose)
	flags.BoolVarP(&opts.quiet, flagQuiet, "q", false, messages.RootFlagQuiet)

	cmd.AddCommand(
		newFullCmd(opts),
		newIncrementalCmd(opts),
		newPlanCmd(opts),
		newScriptCmd(opts),
		newCheckCmd(opts),
		newCatalogCmd(opts),
		newProfileCmd(opts),
	)
	return cmd
}

// logger returns the run's logger, writing to the command's stderr.
func (o *rootOptions) logger(cmd *cobra.Command) *logrus.Logger {
	return logging.New(cmd.ErrOrStderr(), logging.Options{Verbose: o.verbose, Quiet: o.quiet})
}

// profilePath returns the --profile value with a leading ~ expanded.
func (o *rootOptions) profilePath() (string, error) {
	if o.profile == "" {
		return "", nil
	}
	path, err := homedir.Expand(o.profile)
	if err != nil {
		return "", fmt.Errorf(messages.ProfileExpandFmt, o.profile, err)
	}
	return path, nil
}

// loadProfile loads the --profile file, or the built-in profile when unset.
func (o *rootOptions) loadProfile() (*device.Profile, error) {
	path, err := o.profilePath()
	if err != nil {
		return nil, err
	}
	return device.LoadOrDefault(path)
}
