package generate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate hyperparameter predictions with a tuned model",
	Long: `Generate hyperparameter predictions for every task record in the input file
using the tuned model for the specified version. The records are written to
the output file with the model's response attached, and a readable
prompt/response log is written record by record.

Environment Variables:
      LEMUR_GENERATE_VERSION         Tuned model version to use
      LEMUR_GENERATE_INPUT           Path to the task records file
      LEMUR_GENERATE_OUTPUT          Path for the predictions file
      LEMUR_GENERATE_LOG             Path for the prompt/response log file
      LEMUR_GENERATE_TUNED_DIR       (default: $HOME/.lemur/finetuned_models)  Artifact directory
      LEMUR_GENERATE_REGISTRY_FILE   Optional yaml file mapping versions to models
      LEMUR_GENERATE_DEVICE          (default: autodetection)  Device to use for inference
      LEMUR_GENERATE_CONTEXT_WINDOW  (default: model metadata) Context window for inference`,
	Run: main,
}

func init() {
	Cmd.Flags().String("version", "", "Tuned model version to use")
	Cmd.Flags().String("input", "", "Path to the task records file")
	Cmd.Flags().String("output", "", "Path for the predictions file")
	Cmd.Flags().String("log", "", "Path for the prompt/response log file")
	Cmd.Flags().String("tuned-dir", "", "Directory for tuned model artifacts")
	Cmd.Flags().String("registry-file", "", "Yaml file mapping versions to models")
	Cmd.Flags().String("device", "", "Device to use for inference")
	Cmd.Flags().Int("context-window", 0, "Context window for inference")
}

func main(cmd *cobra.Command, args []string) {
	if err := run(cmd); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}
