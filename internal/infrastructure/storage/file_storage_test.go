package storage

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage_SaveAndCreate(t *testing.T) {
	ctx := context.Background()
	s := NewLocalFileStorage(t.TempDir(), nil)

	require.NoError(t, s.Save(ctx, "exports/a.xlsx", []byte("one")))
	assert.True(t, s.Exists(ctx, "exports/a.xlsx"))

	w, err := s.Create(ctx, "exports/a.xlsx")
	require.NoError(t, err)
	_, err = io.WriteString(w, "two")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := os.ReadFile(s.GetFullPath("exports/a.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestLocalFileStorage_RejectsEscape(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), nil)
	err := s.Save(context.Background(), "../outside.pdf", []byte("x"))
	assert.ErrorContains(t, err, "escapes base directory")
}

func TestLocalFileStorage_UniqueName(t *testing.T) {
	ctx := context.Background()
	s := NewLocalFileStorage(t.TempDir(), nil)

	assert.Equal(t, "paid.pdf", s.UniqueName(ctx, "paid.pdf"))
	require.NoError(t, s.Save(ctx, "paid.pdf", nil))
	assert.Equal(t, "paid-1.pdf", s.UniqueName(ctx, "paid.pdf"))
	require.NoError(t, s.Save(ctx, "paid-1.pdf", nil))
	assert.Equal(t, "paid-2.pdf", s.UniqueName(ctx, "paid.pdf"))
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"approved claims.xlsx": "approved_claims.xlsx",
		"../../etc/passwd":     "etc_passwd",
		"   ":                  "download",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, SanitizeName(in))
		})
	}
}
