package deploy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    [][]string
		wantErr error
	}{
		{name: "single", line: "git pull", want: [][]string{{"git", "pull"}}},
		{name: "several", line: "git pull; chmod a+x server ;", want: [][]string{{"git", "pull"}, {"chmod", "a+x", "server"}}},
		{name: "empty", line: "  ; ", wantErr: ErrNoCommands},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.commands)
			assert.Equal(t, defaultTimeout, h.timeout)
		})
	}
}

func TestHook_Run(t *testing.T) {
	t.Run("combined output", func(t *testing.T) {
		h, err := New("echo first; echo second")
		require.NoError(t, err)

		out, err := h.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "first\nsecond\n", string(out))
	})

	t.Run("working directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), nil, 0o644))

		h, err := New("ls", WithDir(dir))
		require.NoError(t, err)

		out, err := h.Run(context.Background())
		require.NoError(t, err)
		assert.Contains(t, string(out), "marker.txt")
	})

	t.Run("stops at first failure", func(t *testing.T) {
		h, err := New("false; echo never")
		require.NoError(t, err)

		out, err := h.Run(context.Background())
		assert.Error(t, err)
		assert.NotContains(t, string(out), "never")
	})

	t.Run("timeout", func(t *testing.T) {
		h, err := New("sleep 5", WithTimeout(50*time.Millisecond))
		require.NoError(t, err)

		start := time.Now()
		_, err = h.Run(context.Background())
		assert.Error(t, err)
		assert.Less(t, time.Since(start), 4*time.Second)
	})
}
