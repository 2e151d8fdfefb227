// connect-probe checks TCP reachability of a game server endpoint.
//
// Usage:
//
//	connect-probe <host> [port]
package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const defaultPort = 7779

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: connect-probe <host> [port]")
		os.Exit(2)
	}
	host := os.Args[1]
	port := defaultPort
	if len(os.Args) >= 3 {
		p, err := strconv.Atoi(os.Args[2])
		if err != nil || p <= 0 || p > 65535 {
			fmt.Fprintf(os.Stderr, "invalid port %q\n", os.Args[2])
			os.Exit(2)
		}
		port = p
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	start := time.Now()
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		fmt.Printf("FAIL: could not connect to %s: %v\n", addr, err)
		os.Exit(1)
	}
	defer conn.Close()
	fmt.Printf("SUCCESS: connected to %s (took %.2fs)\n", addr, time.Since(start).Seconds())
}
