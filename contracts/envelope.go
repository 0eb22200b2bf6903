package contracts

import "fmt"

// EnvelopeVersion identifies the outermost wire format
type EnvelopeVersion uint8

const (
	// EnvelopeV2 is the RLP + Base58Check envelope with chunking
	EnvelopeV2 EnvelopeVersion = 2
	// EnvelopeV3 is the CBOR + gzip + Base58Check envelope
	EnvelopeV3 EnvelopeVersion = 3
)

func (v EnvelopeVersion) String() string {
	return fmt.Sprintf("v%d", uint8(v))
}

// PayloadKind tells whether a v2 envelope carries a whole payload or a chunk
type PayloadKind uint8

const (
	PayloadFull    PayloadKind = 0
	PayloadChunked PayloadKind = 1
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadFull:
		return "full"
	case PayloadChunked:
		return "chunked"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}
