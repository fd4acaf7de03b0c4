// Package models defines persistent entities and repository interfaces for the dumper client.
//
// Persistent entities:
//   - [SessionRecord] : one stream session started from the client, with its terminal [Outcome]
//   - [Setting] : a single key-value preference (the theme preference is the only key today)
//
// Entities implement the [Model] interface providing identity, timestamps and validation.
// The [Repository] interface defines the CRUD surface repositories expose for them.
package models
