// Package api holds the wire messages of the billsplitter services and the
// codec they travel in.
package api

import "encoding/json"

// Codec is the connect codec for api messages. It registers under the name
// "json" so clients and browsers use Content-Type application/json.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
