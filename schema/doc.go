// Package schema describes the structure of IAC message payloads and maps
// message types and protocols to those descriptions.
//
// A schema is a closed recursive tagged union (Item) built once during the
// registration phase. Items can be written in Go, compiled from a JSON-schema
// subset in JSON or YAML, or generated from Go types by reflection.
//
// Basic usage:
//
//	registry := schema.NewRegistry()
//	err := registry.Register(contracts.MessageSignRequest, "", schema.Object(map[string]*schema.Item{
//	    "message":     schema.String(),
//	    "publicKey":   schema.String(),
//	    "callbackURL": schema.String(),
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry.Seal()
//
//	entries, err := registry.Resolve(contracts.MessageSignRequest, "eth")
//
// Resolution falls back from "<type>-<protocol>" to the shared ERC20 key, the
// main protocol and finally the protocol-agnostic "<type>" key.
package schema
