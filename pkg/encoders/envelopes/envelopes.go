// Package envelopes provides frame identification for the JSON array framed
// wire protocol. Each frame is a JSON array whose first element is a string
// label selecting the envelope type.
package envelopes

import (
	"encoding/json"

	"quill.dev/pkg/utils/errorf"
)

// Identify parses a frame and returns its label and the raw elements after
// it. The caller dispatches on the label and hands the rest to the matching
// envelope package.
func Identify(msg []byte) (label string, rest []json.RawMessage, err error) {
	var arr []json.RawMessage
	if err = json.Unmarshal(msg, &arr); err != nil {
		return
	}
	if len(arr) == 0 {
		err = errorf.E("envelopes: empty array")
		return
	}
	if err = json.Unmarshal(arr[0], &label); err != nil {
		return
	}
	rest = arr[1:]
	return
}

// Marshal renders a frame from a label and its elements.
func Marshal(label string, elems ...interface{}) (b []byte, err error) {
	arr := append([]interface{}{label}, elems...)
	return json.Marshal(arr)
}
