package store

import (
	"context"
	"sync"
)

// MemoryDocuments is an in-memory StateDocuments with the same deep-merge
// behavior as the document store: structured records merge per key,
// everything else replaces.
type MemoryDocuments struct {
	mu   sync.Mutex
	docs map[string]map[string]interface{}
}

func NewMemoryDocuments() *MemoryDocuments {
	return &MemoryDocuments{docs: map[string]map[string]interface{}{}}
}

func (m *MemoryDocuments) Get(ctx context.Context, id string) (map[string]interface{}, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, false, nil
	}
	return deepCopyMap(doc), true, nil
}

func (m *MemoryDocuments) Set(ctx context.Context, id string, data map[string]interface{}, merge bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !merge {
		m.docs[id] = deepCopyMap(data)
		return nil
	}
	existing, ok := m.docs[id]
	if !ok {
		m.docs[id] = deepCopyMap(data)
		return nil
	}
	m.docs[id] = deepMerge(existing, deepCopyMap(data))
	return nil
}

func deepMerge(dst, src map[string]interface{}) map[string]interface{} {
	for key, val := range src {
		if srcMap, ok := val.(map[string]interface{}); ok {
			if dstMap, ok := dst[key].(map[string]interface{}); ok {
				dst[key] = deepMerge(dstMap, srcMap)
				continue
			}
		}
		dst[key] = val
	}
	return dst
}

func deepCopyMap(src map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(src))
	for key, val := range src {
		if m, ok := val.(map[string]interface{}); ok {
			out[key] = deepCopyMap(m)
			continue
		}
		if s, ok := val.([]interface{}); ok {
			cp := make([]interface{}, len(s))
			copy(cp, s)
			out[key] = cp
			continue
		}
		out[key] = val
	}
	return out
}
