// Package openapi converts records to OpenAPI 3 component schemas and back.
//
// Records become object schemas under #/components/schemas and nested
// records are referenced with $ref. Importing reverses the mapping into
// Definitions ordered so that every record follows the records it uses.
package openapi
