// Package schema provides typed records over loosely typed wire data.
//
// A Record is a named, ordered set of fields. Each field has a Type (string,
// int, float, bool, any, slices, literal enums, unions, or another Record)
// and is either required or optional. Decoding a wire mapping against a
// record validates it and yields an immutable Object:
//
//	params := schema.MustRecord("Params", "",
//	    schema.OptionalField("temperature", schema.Float(), "Sampling temperature"),
//	)
//	input := schema.MustRecord("Input", "",
//	    schema.RequiredField("inputs", schema.String(), "The input text"),
//	    schema.OptionalField("parameters", params, "Additional parameters"),
//	)
//
//	obj, err := schema.Decode(input, map[string]any{"inputs": "hello world"})
//	if err != nil {
//	    // every failure is a *ValidationError naming the field path
//	}
//	wire := obj.ToWire() // {"inputs": "hello world"}
//
// Optional fields have three states: absent (omitted by ToWire), null
// (emitted as nil) and set. Typed code carries them as Optional[T].
//
// Unions try their alternatives in declaration order and accept the first
// match, so the order of Union(Bool(), Literal("never")) is part of the
// contract. Keys a record does not declare are dropped by default; see
// WithUnknownFields for the strict and preserving policies.
//
// Types render to type strings ("[int]", "bool | \"never\"", record names)
// that ParseType and Definition read back, which is how records are stored
// and exchanged at runtime.
package schema
