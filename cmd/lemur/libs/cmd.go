package libs

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "libs",
	Short: "Install or upgrade llama.cpp libraries",
	Long: `Install or upgrade llama.cpp libraries

Environment Variables:
      LEMUR_LIB_PATH   (default: $HOME/.lemur/libraries)  The path to the libraries directory
      LEMUR_PROCESSOR  (default: cpu)  Options: cpu, cuda, metal, vulkan`,
	Run: main,
}

func main(cmd *cobra.Command, args []string) {
	if err := run(); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}
}
