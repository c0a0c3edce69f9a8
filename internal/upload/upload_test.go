package upload

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/minisocial/internal/apperror"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{
	0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00,
}

func newTestStore(t *testing.T, max int64) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "uploads"), max)
	require.NoError(t, err)
	return s
}

func TestSaveImage_PNG(t *testing.T) {
	s := newTestStore(t, 1<<20)

	ref, err := s.SaveImage(bytes.NewReader(pngHeader))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, PublicPrefix+"image-"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	stored, err := os.ReadFile(filepath.Join(s.Dir(), strings.TrimPrefix(ref, PublicPrefix)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestSaveImage_RejectsNonImage(t *testing.T) {
	s := newTestStore(t, 1<<20)

	_, err := s.SaveImage(strings.NewReader("#!/bin/sh\necho pwned\n"))

	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestSaveImage_RejectsOversize(t *testing.T) {
	s := newTestStore(t, 16)

	_, err := s.SaveImage(bytes.NewReader(pngHeader))

	assert.ErrorIs(t, err, apperror.ErrValidation)
	entries, _ := os.ReadDir(s.Dir())
	assert.Empty(t, entries, "nothing may be written for a rejected upload")
}

func TestSaveImage_RejectsEmpty(t *testing.T) {
	s := newTestStore(t, 16)

	_, err := s.SaveImage(bytes.NewReader(nil))

	assert.ErrorIs(t, err, apperror.ErrValidation)
}
