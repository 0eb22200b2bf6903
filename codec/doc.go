// Package codec converts schema-described JSON values into ordered arrays of
// wire primitives and back.
//
// The wire form is positional: object properties are written in lexicographic
// order without their names, so the schema is the only type information a
// decoder has. Leaf values are delegated to a FieldCodec strategy:
//   - LegacyFields writes every primitive as text, for the RLP envelope
//   - CompactFields writes native CBOR primitives and frames hex-looking
//     strings with a StringType tag byte so they travel as raw bytes
//
// Every kind mismatch is reported as a *SchemaTypeError naming the field key,
// the expected kind and the actual value.
package codec
