package jsonlutil

import (
	"bytes"
	"errors"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	N int `json:"n"`
}

func TestStartEncodesLines(t *testing.T) {
	var buf bytes.Buffer
	in, done := Start[row](&buf, 2, func(enc *jsoniter.Encoder, r row) error { return enc.Encode(r) },
		func(error) bool { return false })
	for i := 1; i <= 3; i++ {
		in <- row{N: i}
	}
	close(in)
	require.NoError(t, <-done)
	assert.Equal(t, "{\"n\":1}\n{\"n\":2}\n{\"n\":3}\n", buf.String())
}

func TestStartReportsEncodeError(t *testing.T) {
	boom := errors.New("boom")
	in, done := Start[row](&bytes.Buffer{}, 1, func(*jsoniter.Encoder, row) error { return boom },
		func(error) bool { return false })
	for i := 0; i < 5; i++ {
		in <- row{N: i}
	}
	close(in)
	assert.ErrorIs(t, <-done, boom)
}
