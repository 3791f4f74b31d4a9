// Package wire holds the JSON shapes exchanged between the bus server and its clients.
//
// Message payloads are encoded as arrays of byte values:
//
//	{"channel": "development", "msg": [1, 2, 3]}
//
// Bytes also decodes a base64 string, the default encoding/json form of []byte,
// so generic JSON tooling can publish too.
package wire
