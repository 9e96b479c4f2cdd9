// Package remove provides the models remove command code.
package remove

import (
	"fmt"

	"github.com/ardanlabs/lemur/sdk/tools/models"
)

func run(args []string) error {
	modelID := args[0]

	mdls, err := models.New()
	if err != nil {
		return fmt.Errorf("unable to create models system: %w", err)
	}

	mp, err := mdls.RetrievePath(modelID)
	if err != nil {
		return err
	}

	fmt.Printf("Are you sure you want to remove %q? (y/n): ", modelID)

	var response string
	fmt.Scanln(&response)

	if response != "y" && response != "Y" {
		fmt.Println("Remove cancelled")
		return nil
	}

	if err := mdls.Remove(mp); err != nil {
		return fmt.Errorf("remove-model: %w", err)
	}

	fmt.Println("Remove complete")

	return nil
}
