package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/leonardcser/kvcache/internal/cache"
	"github.com/leonardcser/kvcache/internal/config"
)

const usage = `usage: cachectl [flags] <op> <key> [value]

ops:
  get <key>           print the cached value; exits 1 on a miss
  set <key> <value>   store a value (see -ttl)
  delete <key>        remove a key; removing an absent key is fine
  check <key>         print true/false; exits 1 when invalid or absent

flags:
`

func main() {
	sock := flag.String("sock", "", "daemon socket path (default: KVCACHE_SOCK or ~/.cache/kvcache/cache.sock)")
	ttl := flag.Duration("ttl", 0, "time-to-live for set; 0 means never expires")
	start := flag.Bool("start", false, "start the cached daemon if the socket does not answer")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		os.Exit(2)
	}
	op, key := args[0], args[1]

	path := *sock
	if path == "" {
		path = config.DefaultSocketPath()
	}

	client, err := connect(path, *start)
	if err != nil {
		fatalf("connect %s: %v", path, err)
	}

	switch op {
	case "get":
		v, found, err := client.Get(key)
		if err != nil {
			fatalf("get: %v", err)
		}
		if !found {
			os.Exit(1)
		}
		os.Stdout.Write(v)
		fmt.Println()
	case "set":
		if len(args) < 3 {
			flag.Usage()
			os.Exit(2)
		}
		if err := client.Set(key, []byte(args[2]), *ttl); err != nil {
			fatalf("set: %v", err)
		}
	case "delete":
		if err := client.Delete(key); err != nil {
			fatalf("delete: %v", err)
		}
	case "check":
		valid, err := client.IsValid(key)
		if err != nil {
			fatalf("check: %v", err)
		}
		fmt.Println(valid)
		if !valid {
			os.Exit(1)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "cachectl: "+format+"\n", args...)
	os.Exit(1)
}

// connect probes the socket and, when asked, starts the daemon and waits for
// it to come up.
func connect(sock string, startDaemon bool) (*cache.Client, error) {
	if err := probe(sock); err == nil {
		return cache.NewClient(sock), nil
	} else if !startDaemon {
		return nil, err
	}

	if err := startCached(); err != nil {
		return nil, fmt.Errorf("start daemon: %w", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := probe(sock); err == nil {
			return cache.NewClient(sock), nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return nil, fmt.Errorf("daemon did not answer on %s", sock)
}

func probe(sock string) error {
	conn, err := net.DialTimeout("unix", sock, 200*time.Millisecond)
	if err != nil {
		return err
	}
	return conn.Close()
}

func startCached() error {
	// 1) Try daemon binary next to this executable (works with absolute invocation)
	if exePath, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exePath), "cached")
		if _, statErr := os.Stat(sibling); statErr == nil {
			return spawn(sibling)
		}
	}

	// 2) Try PATH binary
	if path, err := exec.LookPath("cached"); err == nil {
		return spawn(path)
	}

	// 3) Try local binary in current working directory (best-effort)
	if _, err := os.Stat("./cached"); err == nil {
		return spawn("./cached")
	}

	return exec.ErrNotFound
}

func spawn(path string) error {
	cmd := exec.Command(path)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Env = os.Environ()
	return cmd.Start()
}
