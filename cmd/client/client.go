package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
)

// A thin console client: forwards stdin command lines to the server and
// prints whatever comes back. See internal/dispatch for the protocol.
func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "Address of the book server")
	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("Failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s\n", *serverAddr)

	// Print query answers as they arrive.
	go func() {
		if _, err := io.Copy(os.Stdout, conn); err != nil {
			log.Printf("Connection lost: %v", err)
		}
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(conn, scanner.Text()); err != nil {
			log.Fatalf("Failed to send command: %v", err)
		}
	}
}
