// Package schema validates and cleans AI provider output before it enters
// the store.
//
// DecodeBatch parses a raw provider response into typed payloads for a
// stage, applying per-field cleaning (name normalization, pain-degree
// clamping) and strict validation (required fields, enumerated
// vocabularies). Validation is all-or-nothing: a single invalid item
// rejects the whole batch, so partial or corrupt batches never persist.
package schema
