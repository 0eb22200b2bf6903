package serialization

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunks(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefghij"), 25)

	t.Run("returns nil when data fits a single frame", func(t *testing.T) {
		chunks, err := SplitChunks(data, len(data), 10)
		require.NoError(t, err)
		assert.Nil(t, chunks)
	})

	t.Run("returns nil when chunking is disabled", func(t *testing.T) {
		chunks, err := SplitChunks(data, 0, 10)
		require.NoError(t, err)
		assert.Nil(t, chunks)
	})

	t.Run("splits into pages of at most multi bytes", func(t *testing.T) {
		chunks, err := SplitChunks(data, 100, 60)
		require.NoError(t, err)
		require.Len(t, chunks, 5)

		for i, chunk := range chunks {
			assert.Equal(t, uint(i), chunk.Page)
			assert.Equal(t, uint(5), chunk.Total)
			assert.LessOrEqual(t, len(chunk.Data), 60)
		}
		assert.Len(t, chunks[4].Data, 10)
	})

	t.Run("rejects a non-positive multi size", func(t *testing.T) {
		_, err := SplitChunks(data, 100, 0)
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
	})

	t.Run("rejects more pages than a chunk set may hold", func(t *testing.T) {
		_, err := SplitChunks(make([]byte, maxChunkPages+1), 1, 1)
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
	})
}

func TestReassembleChunks(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 13)
	chunks, err := SplitChunks(data, 1, 20)
	require.NoError(t, err)
	require.Len(t, chunks, 7)

	t.Run("reassembles out of order chunks", func(t *testing.T) {
		shuffled := []Chunk{chunks[3], chunks[6], chunks[0], chunks[5], chunks[1], chunks[4], chunks[2]}
		out, incomplete, err := ReassembleChunks(shuffled)
		require.NoError(t, err)
		assert.Nil(t, incomplete)
		assert.Equal(t, data, out)
	})

	t.Run("tolerates duplicate pages", func(t *testing.T) {
		out, incomplete, err := ReassembleChunks(append([]Chunk{chunks[2]}, chunks...))
		require.NoError(t, err)
		assert.Nil(t, incomplete)
		assert.Equal(t, data, out)
	})

	t.Run("reports missing pages", func(t *testing.T) {
		partial := []Chunk{chunks[5], chunks[0], chunks[2]}
		out, incomplete, err := ReassembleChunks(partial)
		require.NoError(t, err)
		assert.Nil(t, out)
		require.NotNil(t, incomplete)
		assert.Equal(t, []uint{0, 2, 5}, incomplete.AvailablePages)
		assert.Equal(t, uint(7), incomplete.TotalPages)
		assert.Equal(t, []uint{1, 3, 4, 6}, incomplete.Missing())
	})

	t.Run("rejects disagreeing totals", func(t *testing.T) {
		bad := []Chunk{chunks[0], {Page: 1, Total: 3, Data: []byte("x")}}
		_, _, err := ReassembleChunks(bad)
		assert.ErrorIs(t, err, ErrChunkMismatch)
	})

	t.Run("rejects a page beyond the total", func(t *testing.T) {
		_, _, err := ReassembleChunks([]Chunk{{Page: 7, Total: 7}})
		assert.ErrorIs(t, err, ErrChunkMismatch)
	})

	t.Run("rejects conflicting duplicates", func(t *testing.T) {
		conflict := Chunk{Page: 0, Total: 7, Data: []byte("different")}
		_, _, err := ReassembleChunks([]Chunk{chunks[0], conflict})
		assert.ErrorIs(t, err, ErrChunkMismatch)
	})

	t.Run("rejects an empty set", func(t *testing.T) {
		_, _, err := ReassembleChunks(nil)
		assert.ErrorIs(t, err, ErrChunkMismatch)
	})

	t.Run("rejects a total beyond the page limit", func(t *testing.T) {
		out, incomplete, err := ReassembleChunks([]Chunk{{Page: 0, Total: 1_000_000_000_000, Data: []byte("x")}})
		assert.ErrorIs(t, err, ErrChunkMismatch)
		assert.Nil(t, out)
		assert.Nil(t, incomplete)
	})

	t.Run("lists missing pages of the largest allowed set", func(t *testing.T) {
		_, incomplete, err := ReassembleChunks([]Chunk{{Page: 1, Total: maxChunkPages, Data: []byte("x")}})
		require.NoError(t, err)
		require.NotNil(t, incomplete)

		missing := incomplete.Missing()
		assert.Len(t, missing, maxChunkPages-1)
		assert.Equal(t, uint(0), missing[0])
		assert.Equal(t, uint(2), missing[1])
	})
}
