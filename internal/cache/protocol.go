package cache

// Simple JSON protocol for the cache daemon over a Unix domain socket.
// One request -> one response using json.Encoder/Decoder per connection.

type Request struct {
	Op         string `json:"op"` // "get" | "set" | "delete" | "check"
	Key        string `json:"key"`
	Value      []byte `json:"value,omitempty"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

type Response struct {
	OK    bool   `json:"ok"`
	Found bool   `json:"found,omitempty"`
	Value []byte `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}
