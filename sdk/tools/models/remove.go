package models

import (
	"fmt"
	"os"
)

// Remove removes the specified file from the models directory.
func (m *Models) Remove(mp Path) (err error) {
	defer func() {
		if errDfr := m.BuildIndex(); err == nil {
			err = errDfr
		}
	}()

	if err := os.Remove(mp.ModelFile); err != nil {
		return fmt.Errorf("remove-model: unable to remove model: %q", mp.ModelFile)
	}

	return nil
}
