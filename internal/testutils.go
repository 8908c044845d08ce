package internal

import (
	"sync"

	"github.com/Krajiyah/speaker-os/pkg/util"
	"github.com/go-ble/ble"
)

// MemoryStore is a map backed storage.Store. Keys in FailSet make Set return the mapped error.
type MemoryStore struct {
	mutex   sync.Mutex
	Values  map[string]string
	FailSet map[string]error
	Writes  []string
}

func NewMemoryStore(values map[string]string) *MemoryStore {
	if values == nil {
		values = map[string]string{}
	}
	return &MemoryStore{Values: values, FailSet: map[string]error{}}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	v, ok := s.Values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.FailSet[key]; err != nil {
		return err
	}
	s.Values[key] = value
	s.Writes = append(s.Writes, key)
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.Values, key)
	return nil
}

func FindCharacteristic(services []*ble.Service, uuid string) *ble.Characteristic {
	for _, s := range services {
		for _, c := range s.Characteristics {
			if util.UUIDEqualStr(c.UUID, uuid) {
				return c
			}
		}
	}
	return nil
}
