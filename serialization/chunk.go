package serialization

import (
	"bytes"
	"fmt"
	"sort"
)

// maxChunkPages bounds the page count of a chunk set. Totals come from the
// wire and are checked before anything is sized from them.
const maxChunkPages = 1 << 16

// Chunk is one page of a serialized payload that did not fit a single frame
type Chunk struct {
	Page  uint
	Total uint
	Data  []byte
}

// Incomplete describes a chunk set that is still missing pages. It is a
// normal outcome while a scanner collects frames, not an error.
type Incomplete struct {
	AvailablePages []uint
	TotalPages     uint
}

// Missing returns the pages that have not been received yet
func (i *Incomplete) Missing() []uint {
	have := make(map[uint]bool, len(i.AvailablePages))
	for _, p := range i.AvailablePages {
		have[p] = true
	}
	var missing []uint
	for p := uint(0); p < i.TotalPages; p++ {
		if !have[p] {
			missing = append(missing, p)
		}
	}
	return missing
}

// SplitChunks splits data into pages of at most multiChunkSize bytes when it
// is longer than singleChunkSize. It returns nil when the data fits one frame
// or chunking is disabled (singleChunkSize of zero).
func SplitChunks(data []byte, singleChunkSize, multiChunkSize int) ([]Chunk, error) {
	if singleChunkSize <= 0 || len(data) <= singleChunkSize {
		return nil, nil
	}
	if multiChunkSize <= 0 {
		return nil, fmt.Errorf("%w: multi chunk size %d", ErrInvalidChunkSize, multiChunkSize)
	}

	total := (len(data) + multiChunkSize - 1) / multiChunkSize
	if total > maxChunkPages {
		return nil, fmt.Errorf("%w: %d pages of %d bytes exceed the limit of %d pages", ErrInvalidChunkSize, total, multiChunkSize, maxChunkPages)
	}
	chunks := make([]Chunk, 0, total)
	for page := 0; page < total; page++ {
		start := page * multiChunkSize
		end := min(start+multiChunkSize, len(data))
		chunks = append(chunks, Chunk{
			Page:  uint(page),
			Total: uint(total),
			Data:  data[start:end],
		})
	}
	return chunks, nil
}

// ReassembleChunks orders the received chunks by page and concatenates them.
// When pages are missing it returns an Incomplete describing what arrived.
// Chunks may arrive in any order and more than once.
func ReassembleChunks(chunks []Chunk) ([]byte, *Incomplete, error) {
	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("%w: no chunks", ErrChunkMismatch)
	}

	total := chunks[0].Total
	if total == 0 {
		return nil, nil, fmt.Errorf("%w: total of zero pages", ErrChunkMismatch)
	}
	if total > maxChunkPages {
		return nil, nil, fmt.Errorf("%w: total of %d pages exceeds %d", ErrChunkMismatch, total, maxChunkPages)
	}

	pages := make(map[uint][]byte, min(total, uint(len(chunks))))
	for _, chunk := range chunks {
		if chunk.Total != total {
			return nil, nil, fmt.Errorf("%w: page %d claims %d pages, expected %d", ErrChunkMismatch, chunk.Page, chunk.Total, total)
		}
		if chunk.Page >= total {
			return nil, nil, fmt.Errorf("%w: page %d out of range for %d pages", ErrChunkMismatch, chunk.Page, total)
		}
		if existing, ok := pages[chunk.Page]; ok && !bytes.Equal(existing, chunk.Data) {
			return nil, nil, fmt.Errorf("%w: page %d received with different content", ErrChunkMismatch, chunk.Page)
		}
		pages[chunk.Page] = chunk.Data
	}

	available := make([]uint, 0, len(pages))
	for page := range pages {
		available = append(available, page)
	}
	sort.Slice(available, func(i, j int) bool { return available[i] < available[j] })

	if uint(len(available)) < total {
		return nil, &Incomplete{AvailablePages: available, TotalPages: total}, nil
	}

	var buf bytes.Buffer
	for _, page := range available {
		buf.Write(pages[page])
	}
	return buf.Bytes(), nil, nil
}
