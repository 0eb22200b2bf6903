// Package serialization turns IAC messages into transportable strings and
// back.
//
// A Format binds the shared message layer (schema resolution, candidate
// fallthrough, id and protocol validation) to one wire envelope:
//   - LegacyFormat (v2): RLP + Base58Check, with chunking for payloads larger
//     than a single QR frame. An incomplete chunk set is reported through
//     Result.Incomplete, not as an error.
//   - CompactFormat (v3): CBOR + gzip + Base58Check, without chunking. A
//     message tuple that matches no schema is reported in Result.Skipped and
//     the rest of the batch still decodes.
//
// Formats are immutable after construction and safe for concurrent use as
// long as their schema registry is sealed.
package serialization
