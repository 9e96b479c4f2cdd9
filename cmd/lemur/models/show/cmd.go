package show

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "show <MODEL_ID>",
	Short: "Show information for a model",
	Long: `Show information for a model, loading the model file to read its metadata

Environment Variables:
      LEMUR_MODELS  (default: $HOME/.lemur/models)  The path to the models directory`,
	Args: cobra.ExactArgs(1),
	Run:  main,
}

func main(cmd *cobra.Command, args []string) {
	if err := run(args); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}
