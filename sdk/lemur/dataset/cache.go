package dataset

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// The cache stores a count key plus one key per example so a split can be
// read back without scanning.

const countKey = "count"

func exampleKey(i int) []byte {
	return fmt.Appendf(nil, "example:%08d", i)
}

func loadCache(dir string) ([]Example, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("loadcache: %w", err)
	}
	defer db.Close()

	var examples []Example

	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(countKey))
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}

		var count int
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &count)
		}); err != nil {
			return fmt.Errorf("count: %w", err)
		}

		examples = make([]Example, count)

		for i := 0; i < count; i++ {
			item, err := txn.Get(exampleKey(i))
			if err != nil {
				return fmt.Errorf("example[%d]: %w", i, err)
			}

			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &examples[i])
			}); err != nil {
				return fmt.Errorf("example[%d]: %w", i, err)
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("loadcache: %w", err)
	}

	return examples, nil
}

func saveCache(dir string, examples []Example) error {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("savecache: %w", err)
	}
	defer db.Close()

	wb := db.NewWriteBatch()
	defer wb.Cancel()

	count, err := json.Marshal(len(examples))
	if err != nil {
		return fmt.Errorf("savecache: %w", err)
	}

	if err := wb.Set([]byte(countKey), count); err != nil {
		return fmt.Errorf("savecache: count: %w", err)
	}

	for i, ex := range examples {
		data, err := json.Marshal(ex)
		if err != nil {
			return fmt.Errorf("savecache: example[%d]: %w", i, err)
		}

		if err := wb.Set(exampleKey(i), data); err != nil {
			return fmt.Errorf("savecache: example[%d]: %w", i, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("savecache: %w", err)
	}

	return nil
}
