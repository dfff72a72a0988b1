package browser

import (
	"errors"
	"testing"
)

type fakeLauncher struct {
	killed int
}

func (f *fakeLauncher) Kill() { f.killed++ }

func TestConnectOrKill(t *testing.T) {
	errRefused := errors.New("connection refused")

	tests := []struct {
		name       string
		connectErr error
		wantKilled int
	}{
		{name: "connected", connectErr: nil, wantKilled: 0},
		{name: "connect fails", connectErr: errRefused, wantKilled: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &fakeLauncher{}

			err := connectOrKill(l, func() error { return tt.connectErr })
			if !errors.Is(err, tt.connectErr) || (tt.connectErr == nil) != (err == nil) {
				t.Fatalf("connectOrKill() error = %v, want %v", err, tt.connectErr)
			}

			if l.killed != tt.wantKilled {
				t.Errorf("Kill called %d times, want %d", l.killed, tt.wantKilled)
			}
		})
	}
}
