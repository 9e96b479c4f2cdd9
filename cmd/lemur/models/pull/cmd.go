package pull

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "pull <MODEL_URL>",
	Short: "Pull a quantized model from the web",
	Long: `Pull a quantized model from the web

Environment Variables:
      LEMUR_MODELS    (default: $HOME/.lemur/models)  The path to the models directory
      LEMUR_HF_TOKEN  Hugging Face access token for gated models`,
	Args: cobra.ExactArgs(1),
	Run:  main,
}

func main(cmd *cobra.Command, args []string) {
	if err := run(args); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}
