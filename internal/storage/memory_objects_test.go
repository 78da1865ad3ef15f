package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var errUnavailable = errors.New("object store: service unavailable")

// memoryObjects ObjectStore в памяти с управляемыми сбоями.
type memoryObjects struct {
	mu         sync.Mutex
	objects    map[string]memoryObject
	generation int64
	clock      time.Time

	failPut  map[string]error
	failRead map[string]error
	failList error
	puts     []string
}

type memoryObject struct {
	data       []byte
	generation int64
	updated    time.Time
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{
		objects:  make(map[string]memoryObject),
		clock:    time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
		failPut:  make(map[string]error),
		failRead: make(map[string]error),
	}
}

func (m *memoryObjects) Put(ctx context.Context, key string, data []byte, ifGeneration int64) (ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failPut[key]; err != nil {
		return ObjectInfo{}, err
	}
	current, exists := m.objects[key]
	switch {
	case ifGeneration == 0 && exists:
		return ObjectInfo{}, ErrPreconditionFailed
	case ifGeneration > 0 && (!exists || current.generation != ifGeneration):
		return ObjectInfo{}, ErrPreconditionFailed
	}

	m.generation++
	m.clock = m.clock.Add(time.Second)
	m.objects[key] = memoryObject{
		data:       append([]byte(nil), data...),
		generation: m.generation,
		updated:    m.clock,
	}
	m.puts = append(m.puts, key)
	return ObjectInfo{Key: key, URL: "https://blob.test/" + key, Generation: m.generation, Updated: m.clock}, nil
}

func (m *memoryObjects) Read(ctx context.Context, key string) ([]byte, ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failRead[key]; err != nil {
		return nil, ObjectInfo{}, err
	}
	obj, ok := m.objects[key]
	if !ok {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	return append([]byte(nil), obj.data...), ObjectInfo{Key: key, Generation: obj.generation, Updated: obj.updated}, nil
}

func (m *memoryObjects) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failList != nil {
		return nil, m.failList
	}
	var out []ObjectInfo
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Generation: obj.generation, Updated: obj.updated})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// setRaw кладёт объект в обход Put, без учёта сбоев.
func (m *memoryObjects) setRaw(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.clock = m.clock.Add(time.Second)
	m.objects[key] = memoryObject{data: data, generation: m.generation, updated: m.clock}
}

func (m *memoryObjects) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.objects[key]
	return ok
}
