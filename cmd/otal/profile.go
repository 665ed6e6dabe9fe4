package main

import (
	"fmt"
	"os"

	"github.com/google/renameio"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/conn-castle/ota-layer/internal/device"
	"github.com/conn-castle/ota-layer/internal/messages"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.ProfileUse,
		Short: messages.ProfileShort,
	}
	cmd.AddCommand(newProfileInitCmd(), newProfileValidateCmd(opts))
	return cmd
}

func newProfileInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   messages.ProfileInitUse,
		Short: messages.ProfileInitShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := device.DefaultProfileName
			if len(args) == 1 {
				path = args[0]
			}
			expanded, err := homedir.Expand(path)
			if err != nil {
				return fmt.Errorf(messages.ProfileExpandFmt, path, err)
			}
			if _, err := os.Stat(expanded); err == nil && !force {
				return fmt.Errorf(messages.ProfileExistsFmt, expanded)
			}
			if err := renameio.WriteFile(expanded, device.DefaultBytes(), 0o644); err != nil {
				return fmt.Errorf(messages.ProfileWriteFmt, expanded, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.ProfileWroteFmt, expanded)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, flagForce, false, messages.FlagForce)
	return cmd
}

func newProfileValidateCmd(opts *rootOptions) *cobra.Command {
	var previous string
	cmd := &cobra.Command{
		Use:   messages.ProfileValidateUse,
		Short: messages.ProfileValidShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.profilePath()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if path, err = homedir.Expand(args[0]); err != nil {
					return fmt.Errorf(messages.ProfileExpandFmt, args[0], err)
				}
			}
			profile, err := device.LoadOrDefault(path)
			if err != nil {
				return err
			}
			if previous != "" {
				if err := checkPrevious(profile, previous); err != nil {
					return err
				}
			}
			name := path
			if name == "" {
				name = messages.RootUse + " built-in profile"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.ProfileValidFmt, name, len(profile.Catalog.Partitions), len(profile.Firmware.Flash))
			return nil
		},
	}
	cmd.Flags().StringVar(&previous, flagPrevious, "", messages.FlagPrevious)
	return cmd
}

// checkPrevious fails when profile's catalog no longer lists a partition the
// profile at previousPath did.
func checkPrevious(profile *device.Profile, previousPath string) error {
	expanded, err := homedir.Expand(previousPath)
	if err != nil {
		return fmt.Errorf(messages.ProfileExpandFmt, previousPath, err)
	}
	old, err := device.Load(expanded)
	if err != nil {
		return err
	}
	oldCatalog, err := old.PartitionCatalog()
	if err != nil {
		return err
	}
	catalog, err := profile.PartitionCatalog()
	if err != nil {
		return err
	}
	if err := catalog.CheckSuperset(oldCatalog); err != nil {
		return fmt.Errorf(messages.ProfilePreviousFmt, expanded, err)
	}
	return nil
}
