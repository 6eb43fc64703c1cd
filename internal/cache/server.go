package cache

import (
	"encoding/json"
	"errors"
	"net"
	"time"
)

// Serve answers requests against kv until the listener is closed. Each
// accepted connection gets its own goroutine and may issue any number of
// requests.
func Serve(l net.Listener, kv KV) {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		go handleConn(conn, kv)
	}
}

func handleConn(conn net.Conn, kv KV) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			return
		}
		if err := enc.Encode(respond(&req, kv)); err != nil {
			return
		}
	}
}

func respond(req *Request, kv KV) Response {
	switch req.Op {
	case "get":
		v, found, err := kv.Get(req.Key)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true, Found: found, Value: v}
	case "set":
		ttl := time.Duration(req.TTLSeconds) * time.Second
		if err := kv.Set(req.Key, req.Value, ttl); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true}
	case "delete":
		if err := kv.Delete(req.Key); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true}
	case "check":
		valid, err := kv.IsValid(req.Key)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true, Found: valid}
	default:
		return Response{Error: "unknown op"}
	}
}
