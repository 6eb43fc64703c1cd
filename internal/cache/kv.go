package cache

import "time"

// KV is the cache contract as seen across the daemon boundary. Absence stays
// a first-class result: the bool reports whether a valid entry was found, the
// error slot carries transport failures only.
// Implementations must be safe for concurrent use by multiple goroutines.
type KV interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	IsValid(key string) (bool, error)
}

// Local adapts an in-process Cache to the KV interface. It never returns an
// error.
type Local struct {
	c *Cache[[]byte]
}

func NewLocal(c *Cache[[]byte]) *Local { return &Local{c: c} }

func (l *Local) Get(key string) ([]byte, bool, error) {
	v, ok := l.c.Get(key)
	return v, ok, nil
}

func (l *Local) Set(key string, value []byte, ttl time.Duration) error {
	l.c.Set(key, value, ttl)
	return nil
}

func (l *Local) Delete(key string) error {
	l.c.Delete(key)
	return nil
}

func (l *Local) IsValid(key string) (bool, error) {
	return l.c.IsValid(key), nil
}

var _ KV = (*Local)(nil)
