// Package contracts provides the core message types of the inter-app
// communication (IAC) protocol.
//
// This package defines the values that flow between an offline signer and its
// online companion application:
//   - Message: one logical request or response (id, type, protocol, payload)
//   - MessageType: the closed set of deployed message type numbers
//   - EnvelopeVersion and PayloadKind: the wire container identifiers
//   - Payload structs for the protocol-agnostic message types
//
// The numeric values in this package are protocol constants shared with
// already-issued QR codes and must never change.
package contracts
