package workflow

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"github.com/klauspost/compress/flate"
)

// ChunkAlgorithm tags the encoding so chunks stay self-describing. The
// XOR stage is obfuscation at rest, not encryption.
const ChunkAlgorithm = "deflate+xor+b64"

// ChunkEntries packs entries into chunks whose encoded size stays within
// byteBudget. Entry order is preserved across chunks; a single entry
// whose encoding alone exceeds the budget still gets its own over-budget
// chunk rather than being split or dropped.
func ChunkEntries(entries []models.PayloadEntry, byteBudget int, key []byte) ([]models.PayloadChunk, error) {
	if byteBudget <= 0 {
		return nil, fmt.Errorf("chunk byte budget must be positive, got %d", byteBudget)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("chunk key must not be empty")
	}

	var chunks []models.PayloadChunk
	var current []models.PayloadEntry

	flush := func(group []models.PayloadEntry) error {
		data, err := encodePayload(group, key)
		if err != nil {
			return err
		}
		chunks = append(chunks, models.PayloadChunk{
			Seq:       len(chunks),
			Algorithm: ChunkAlgorithm,
			Data:      data,
		})
		return nil
	}

	for _, entry := range entries {
		candidate := append(append([]models.PayloadEntry{}, current...), entry)
		data, err := encodePayload(candidate, key)
		if err != nil {
			return nil, err
		}

		if len(data) <= byteBudget {
			current = candidate
			continue
		}

		if len(current) > 0 {
			if err := flush(current); err != nil {
				return nil, err
			}
			current = nil
			solo, err := encodePayload([]models.PayloadEntry{entry}, key)
			if err != nil {
				return nil, err
			}
			if len(solo) <= byteBudget {
				current = []models.PayloadEntry{entry}
				continue
			}
		}

		// Oversized on its own: emit over budget rather than split.
		if err := flush([]models.PayloadEntry{entry}); err != nil {
			return nil, err
		}
	}

	if len(current) > 0 {
		if err := flush(current); err != nil {
			return nil, err
		}
	}

	return chunks, nil
}

// DecodeChunks is the structural inverse of ChunkEntries: chunks are
// decoded independently in Seq order and their entries concatenated.
func DecodeChunks(chunks []models.PayloadChunk, key []byte) ([]models.PayloadEntry, error) {
	ordered := append([]models.PayloadChunk{}, chunks...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })

	var entries []models.PayloadEntry
	for _, chunk := range ordered {
		group, err := decodePayload(chunk, key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, group...)
	}
	return entries, nil
}

func encodePayload(entries []models.PayloadEntry, key []byte) (string, error) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("serialize payload entries: %w", err)
	}

	var compressed bytes.Buffer
	fw, err := flate.NewWriter(&compressed, flate.DefaultCompression)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(raw); err != nil {
		return "", err
	}
	if err := fw.Close(); err != nil {
		return "", err
	}

	obfuscated := xorBytes(compressed.Bytes(), key)
	return base64.StdEncoding.EncodeToString(obfuscated), nil
}

func decodePayload(chunk models.PayloadChunk, key []byte) ([]models.PayloadEntry, error) {
	if chunk.Algorithm != ChunkAlgorithm {
		return nil, fmt.Errorf("unknown chunk algorithm %q (seq %d)", chunk.Algorithm, chunk.Seq)
	}

	obfuscated, err := base64.StdEncoding.DecodeString(chunk.Data)
	if err != nil {
		return nil, fmt.Errorf("decode chunk %d: %w", chunk.Seq, err)
	}

	compressed := xorBytes(obfuscated, key)
	fr := flate.NewReader(bytes.NewReader(compressed))
	raw, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("inflate chunk %d: %w", chunk.Seq, err)
	}
	if err := fr.Close(); err != nil {
		return nil, err
	}

	var entries []models.PayloadEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("deserialize chunk %d: %w", chunk.Seq, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("chunk %d decoded empty", chunk.Seq)
	}
	return entries, nil
}

func xorBytes(data, key []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}
