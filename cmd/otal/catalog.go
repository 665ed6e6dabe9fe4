package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/renameio"
	"github.com/spf13/cobra"

	"github.com/conn-castle/ota-layer/internal/device"
	"github.com/conn-castle/ota-layer/internal/messages"
	"github.com/conn-castle/ota-layer/internal/partition"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.CatalogUse,
		Short: messages.CatalogShort,
	}
	cmd.AddCommand(newCatalogListCmd(opts), newCatalogAddCmd(opts))
	return cmd
}

func newCatalogListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.CatalogListUse,
		Short: messages.CatalogListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := opts.loadProfile()
			if err != nil {
				return err
			}
			catalog, err := profile.PartitionCatalog()
			if err != nil {
				return err
			}
			for _, name := range catalog.Names() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newCatalogAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.CatalogAddUse,
		Short: messages.CatalogAddShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.profilePath()
			if err != nil {
				return err
			}
			if path == "" {
				return errors.New(messages.CatalogAddProfile)
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf(messages.ProfileReadFmt, path, err)
			}
			updated, err := device.AppendPartition(string(content), partition.Name(args[0]))
			if err != nil {
				return err
			}
			if err := renameio.WriteFile(path, []byte(updated), 0o644); err != nil {
				return fmt.Errorf(messages.ProfileWriteFmt, path, err)
			}
			opts.logger(cmd).WithField("partition", args[0]).Debug("catalog updated")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.CatalogAddedFmt, args[0], path)
			return nil
		},
	}
}
