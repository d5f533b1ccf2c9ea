/*
Package inferschema validates and normalizes the request and response
payloads of inference tasks against typed schema records.

The heavy lifting lives in pkg/schema: records with required and optional
fields, tri-state optionals (absent, null, set), first-match-wins unions,
literal enums and a configurable policy for undeclared keys. This package
adds the Catalog, which resolves records by name. Built-in records (the
text-to-speech family from pkg/tasks/texttospeech) are always available;
further records can be registered at runtime as declarative definitions and
persisted in a store (memory, Redis or a Loam directory).

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/inferschema"
	)

	func main() {
		cat := inferschema.New()
		ctx := context.Background()

		obj, err := cat.Decode(ctx, "TextToSpeechInput", map[string]any{
			"inputs":  "hello world",
			"unknown": true, // dropped by default
		})
		if err != nil {
			log.Fatal(err) // a *schema.ValidationError names the failing field
		}
		fmt.Println(obj.ToWire()) // map[inputs:hello world]
	}

# Adapters

The same catalog is served over HTTP (pkg/adapters/http), the Model Context
Protocol (pkg/adapters/mcp) and the inferschema CLI (cmd/inferschema).
Records can be exported to and imported from OpenAPI components
(pkg/openapi).
*/
package inferschema
