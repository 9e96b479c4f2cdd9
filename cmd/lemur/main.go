package main

import (
	"fmt"
	"os"

	"github.com/ardanlabs/lemur/cmd/lemur/dataset"
	"github.com/ardanlabs/lemur/cmd/lemur/generate"
	"github.com/ardanlabs/lemur/cmd/lemur/libs"
	"github.com/ardanlabs/lemur/cmd/lemur/models"
	"github.com/ardanlabs/lemur/cmd/lemur/tune"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lemur",
	Short: "LoRA fine-tuning and hyperparameter prediction for the LEMUR dataset",
	Long:  "LoRA fine-tuning and hyperparameter prediction for the LEMUR dataset. Lemur tunes quantized DeepSeek models against question/answer records and asks the tuned models for the hyperparameter values of neural network tasks.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
	rootCmd.SetVersionTemplate(version)

	rootCmd.AddCommand(tune.Cmd)
	rootCmd.AddCommand(generate.Cmd)
	rootCmd.AddCommand(dataset.Cmd)
	rootCmd.AddCommand(models.Cmd)
	rootCmd.AddCommand(libs.Cmd)
}
