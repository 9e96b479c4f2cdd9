// Package models provide support for the models sub-command.
package models

import (
	"github.com/ardanlabs/lemur/cmd/lemur/models/list"
	"github.com/ardanlabs/lemur/cmd/lemur/models/pull"
	"github.com/ardanlabs/lemur/cmd/lemur/models/remove"
	"github.com/ardanlabs/lemur/cmd/lemur/models/show"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "models",
	Short: "Manage pretrained model files",
	Long:  `Manage pretrained model files - list, pull, show, and remove models`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	Cmd.AddCommand(list.Cmd)
	Cmd.AddCommand(pull.Cmd)
	Cmd.AddCommand(remove.Cmd)
	Cmd.AddCommand(show.Cmd)
}
