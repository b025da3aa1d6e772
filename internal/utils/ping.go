package utils

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

const pingTimeout = 1500 * time.Millisecond

var schemePorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// PingService reports whether a TCP connection to the service URL's host
// can be opened within the timeout.
func PingService(serviceURL string, timeout time.Duration) error {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	port := parsed.Port()
	if port == "" {
		if p, ok := schemePorts[parsed.Scheme]; ok {
			port = p
		} else {
			port = "80"
		}
	}

	address := net.JoinHostPort(parsed.Hostname(), port)
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}

// PingAuthorizer checks that the Authorizer service is reachable.
func PingAuthorizer(authzURL string) error {
	return PingService(authzURL, pingTimeout)
}

// PingChatAPI checks that the chat-completion endpoint is reachable.
func PingChatAPI(baseURL string) error {
	return PingService(baseURL, pingTimeout)
}
