// Package iojson reads and writes JSON for command line output and input.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// marshalFailure is written to ew when obj cannot be encoded. The strings
// are marshalled on their own so the output stays valid JSON.
func marshalFailure(jsonErr error) string {
	errBytes, _ := json.Marshal(jsonErr.Error())
	return fmt.Sprintf(`{"message":"error marshaling output","data":{"json_error":%s}}`, errBytes)
}

// WriteWith writes obj as indented JSON to w. Encoding failures are
// reported as a JSON error object on ew.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		if _, werr := fmt.Fprintln(ew, marshalFailure(err)); werr != nil {
			return werr
		}
		return fmt.Errorf("marshal output: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}
