package gtp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dumbarb/dumbarb/internal/gtp/faketest"
)

func TestSendSuccess(t *testing.T) {
	tests := []struct {
		name    string
		command string
		script  map[string]string
		want    string
	}{
		{"empty body", "clear_board", map[string]string{"clear_board": ""}, ""},
		{"with body", "genmove B", map[string]string{"genmove B": "D4"}, "D4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := faketest.NewEngine()
			eng.Script = tt.script
			defer eng.Close()
			tr := New(eng.StdinW, eng.StdoutR)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			got, err := tr.Send(ctx, tt.command)
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Send() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSendEngineError(t *testing.T) {
	eng := faketest.NewEngine()
	eng.Handler = func(string) (string, bool) { return "illegal move", true }
	defer eng.Close()
	tr := New(eng.StdinW, eng.StdoutR)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := tr.Send(ctx, "play B D4")
	if !IsIllegalMove(err) {
		t.Fatalf("IsIllegalMove(%v) = false, want true", err)
	}
}

func TestSendTimeout(t *testing.T) {
	eng := faketest.NewEngine()
	eng.Handler = func(string) (string, bool) {
		time.Sleep(50 * time.Millisecond)
		return "", false
	}
	defer eng.Close()
	tr := New(eng.StdinW, eng.StdoutR)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := tr.Send(ctx, "genmove B")
	if err != ErrTimeout {
		t.Fatalf("Send() error = %v, want ErrTimeout", err)
	}
}

func TestSendCancelled(t *testing.T) {
	eng := faketest.NewEngine()
	eng.Handler = func(string) (string, bool) {
		time.Sleep(50 * time.Millisecond)
		return "", false
	}
	defer eng.Close()
	tr := New(eng.StdinW, eng.StdoutR)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	_, err := tr.Send(ctx, "genmove B")
	if err != ErrCancelled {
		t.Fatalf("Send() error = %v, want ErrCancelled", err)
	}
}

func TestSendChannelClosed(t *testing.T) {
	eng := faketest.NewEngine()
	tr := New(eng.StdinW, eng.StdoutR)
	eng.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := tr.Send(ctx, "quit")
	if !errors.Is(err, ErrChannelClosed) {
		t.Fatalf("Send() error = %v, want ErrChannelClosed", err)
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{"plain success", "= D4", "D4", nil},
		{"success with id", "=1 D4", "D4", nil},
		{"empty success", "=", "", nil},
		{"malformed", "garbage", "", ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFrame(tt.body)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("parseFrame() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFrame() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseFrame() = %q, want %q", got, tt.want)
			}
		})
	}
}
