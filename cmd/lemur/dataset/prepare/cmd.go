package prepare

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "prepare",
	Short: "Prebuild the tokenized dataset caches for a version",
	Long: `Prebuild the tokenized train/val caches for a version so a later tuning run
skips the tokenization pass.

Environment Variables:
      LEMUR_DATASET_VERSION         Tuned model version to prepare for
      LEMUR_DATASET_DATASET         Path to the question/answer dataset file
      LEMUR_DATASET_TUNED_DIR       (default: $HOME/.lemur/finetuned_models)  Artifact directory
      LEMUR_DATASET_REGISTRY_FILE   Optional yaml file mapping versions to models
      LEMUR_DATASET_DEVICE          (default: autodetection)  Device to use for tokenization
      LEMUR_DATASET_CONTEXT_WINDOW  (default: model metadata) Context window for tokenization`,
	Run: main,
}

func init() {
	Cmd.Flags().String("version", "", "Tuned model version to prepare for")
	Cmd.Flags().String("dataset", "", "Path to the question/answer dataset file")
	Cmd.Flags().String("tuned-dir", "", "Directory for tuned model artifacts")
	Cmd.Flags().String("registry-file", "", "Yaml file mapping versions to models")
	Cmd.Flags().String("device", "", "Device to use for tokenization")
	Cmd.Flags().Int("context-window", 0, "Context window for tokenization")
}

func main(cmd *cobra.Command, args []string) {
	if err := run(cmd); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}
