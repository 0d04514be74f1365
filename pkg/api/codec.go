// Package api defines the wire messages and Connect bindings for the
// splitledger services. Messages are plain Go structs carried as JSON;
// money values travel as decimal strings.
package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec marshals messages with encoding/json. It is registered under the
// "json" name so Connect clients send application/json.
type Codec struct{}

var _ connect.Codec = Codec{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

// Unmarshal implements connect.Codec.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
