// Package models defines the song catalogue's domain types and request payloads.
//
// The package contains three groups of types:
//
// 1. Records: [Song] is the stored document, identified by a UUID that is unique
// across both collections.
//
// 2. Payloads: [SongInput] is the full create payload, [SongPatch] the partial
// update payload built from [Optional] fields, and [MoveRequest] / [DeleteRequest]
// the bulk payloads answered with a [BulkResult].
//
// 3. Addressing: [Collection] names the two stored collections and [Direction]
// names a move between them.
//
// Payload invariants are enforced through package validation, so failures carry the
// same messages whether they come from struct tags or from the partial-update rules.
package models
