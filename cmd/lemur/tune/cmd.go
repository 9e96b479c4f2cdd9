package tune

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "tune",
	Short: "Fine-tune a model version against a dataset",
	Long: `Fine-tune a model version against a question/answer dataset. The tokenized
dataset is cached per version and reused on later runs.

Environment Variables:
      LEMUR_TUNE_VERSION           Tuned model version to build
      LEMUR_TUNE_DATASET           Path to the question/answer dataset file
      LEMUR_TUNE_TUNED_DIR         (default: $HOME/.lemur/finetuned_models)  Artifact directory
      LEMUR_TUNE_REGISTRY_FILE     Optional yaml file mapping versions to models
      LEMUR_TUNE_DEVICE            (default: autodetection)  Device to use for tokenization
      LEMUR_TUNE_CONTEXT_WINDOW    (default: model metadata) Context window for tokenization
      LEMUR_TRAINER_HOST           (default: http://localhost:8500)  Training agent address
      LEMUR_TRAINER_POLL_INTERVAL  (default: 30s)  Job status poll interval`,
	Run: main,
}

func init() {
	Cmd.Flags().String("version", "", "Tuned model version to build")
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
