// SPDX-License-Identifier: MIT
package cmd

import (
	"spectrum/internal/audio"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := audio.Initialize(); err != nil {
				return err
			}
			defer audio.Terminate()

			return audio.ListDevices(cmd.OutOrStdout())
		},
	}
}
