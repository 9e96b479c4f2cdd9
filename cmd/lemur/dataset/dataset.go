// Package dataset provide support for the dataset sub-command.
package dataset

import (
	"github.com/ardanlabs/lemur/cmd/lemur/dataset/prepare"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage tokenized datasets",
	Long:  `Manage tokenized datasets - prebuild the tokenized train/val caches for a version`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	Cmd.AddCommand(prepare.Cmd)
}
