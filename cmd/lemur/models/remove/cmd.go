package remove

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "remove <MODEL_ID>",
	Short: "Remove a model",
	Long: `Remove a model file from the models directory

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
