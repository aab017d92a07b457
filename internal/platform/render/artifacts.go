package render

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSON writes v to path as indented JSON. Used for the extraction
// document and the unrolled configuration written next to the reports.
func WriteJSON(v interface{}, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
