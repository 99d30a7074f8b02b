// Package storage provides the persisted key-value state layer and the
// self-healing validated reads applied to everything loaded from it.
package storage

// Store is a flat key-value persistence layer. Get returns nil bytes and a
// nil error when the key is absent.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
