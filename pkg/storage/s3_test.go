package storage

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizedReaderWithSeeker(t *testing.T) {
	src := bytes.NewReader([]byte("hello world"))
	_, err := src.Seek(6, io.SeekStart)
	require.NoError(t, err)

	body, size, err := sizedReader(src)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	rest, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "world", string(rest))
}

func TestSizedReaderBuffersPlainReader(t *testing.T) {
	body, size, err := sizedReader(io.MultiReader(strings.NewReader("ab"), strings.NewReader("cd")))
	require.NoError(t, err)
	assert.Equal(t, int64(4), size)

	all, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(all))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.False(t, isNotFound(io.EOF))
}
