/*
Package ports defines the driven ports (interfaces) of the inferschema catalog.

These interfaces decouple the catalog from its storage backends, so record
definitions can live in memory, in Redis or in a Loam file repository.

# Key Interfaces

  - DefinitionStore: persists and loads schema.Definition values by name.
  - Watchable: notifies about changes made to a store behind the catalog's back.

RunDefinitionStoreContract is the shared test suite every store must pass.
*/
package ports
