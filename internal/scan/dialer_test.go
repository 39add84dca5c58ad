package scan

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

// TestNewDirectDialer tests the default dialer against a loopback listener.
func TestNewDirectDialer(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}()

	dialer := NewDirectDialer()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}
	conn.Close()
}

// TestNewSOCKS5Dialer tests SOCKS5 dialer construction and validation.
func TestNewSOCKS5Dialer(t *testing.T) {
	t.Parallel()

	t.Run("valid address creates a dialer without connecting", func(t *testing.T) {
		t.Parallel()

		// No proxy is listening here; construction must still succeed.
		dialer, err := NewSOCKS5Dialer("127.0.0.1:1080")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dialer == nil {
			t.Fatal("expected a dialer")
		}
	})

	t.Run("invalid address format is rejected", func(t *testing.T) {
		t.Parallel()

		invalid := []string{
			"",
			"localhost",
			"localhost:",
			":9050",
			"localhost:abc",
			"localhost:0",
			"localhost:99999",
			"host:port:extra",
		}
		for _, address := range invalid {
			if _, err := NewSOCKS5Dialer(address); !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("NewSOCKS5Dialer(%q) error = %v, want ErrInvalidProxyAddress", address, err)
			}
		}
	})
}

// TestIsValidProxyAddress tests proxy address validation.
func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		want    bool
	}{
		{"127.0.0.1:9050", true},
		{"localhost:1080", true},
		{"proxy.example.com:8080", true},
		{"127.0.0.1:1", true},
		{"127.0.0.1:65535", true},
		{"", false},
		{"127.0.0.1", false},
		{"127.0.0.1:", false},
		{":9050", false},
		{"127.0.0.1:0", false},
		{"127.0.0.1:65536", false},
		{"127.0.0.1:90a0", false},
		{"a:b:c", false},
	}

	for _, tt := range tests {
		if got := isValidProxyAddress(tt.address); got != tt.want {
			t.Errorf("isValidProxyAddress(%q) = %v, want %v", tt.address, got, tt.want)
		}
	}
}

// stuckDialer blocks until its context is cancelled.
type stuckDialer struct{}

func (stuckDialer) Dial(_, _ string) (net.Conn, error) {
	select {} // block forever; the context wrapper must not wait for us
}

// TestSOCKSDialerContext tests context cancellation of a blocking proxy dial.
func TestSOCKSDialerContext(t *testing.T) {
	t.Parallel()

	d := &socksDialer{dialer: stuckDialer{}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := d.DialContext(ctx, "tcp", "10.0.0.1:80")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("DialContext should return promptly on cancellation, took %v", elapsed)
	}
}
