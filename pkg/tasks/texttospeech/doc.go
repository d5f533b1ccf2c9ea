// Package texttospeech declares the request and response records of the
// text-to-speech inference task.
//
// Every record exists twice: as a *schema.Record descriptor (used by the
// catalog, the HTTP and MCP adapters and the OpenAPI exporter) and as a plain
// Go struct whose optional fields are schema.Optional values. The Decode
// functions go from wire data to the struct through the descriptor, so both
// views always agree:
//
//	in, err := texttospeech.DecodeTextToSpeechInput(map[string]any{"inputs": "hello world"})
//	// in.Inputs == "hello world", in.Parameters.IsAbsent()
//	wire := in.ToWire() // {"inputs": "hello world"}
//
// Wire names are the verbatim snake_case names of the inference API.
package texttospeech
