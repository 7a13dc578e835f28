package seq_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/bioalign/seq"
)

func TestFastaReader(t *testing.T) {
	data := ">chr1 a comment\nACGT\nACGT\n>chr2\nTTTT\n"
	r := seq.NewFastaReader(strings.NewReader(data))

	rec1, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "chr1", rec1.Name)
	assert.Equal(t, []byte("ACGTACGT"), rec1.Seq.ASCII())

	rec2, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "chr2", rec2.Name)
	assert.Equal(t, []byte("TTTT"), rec2.Seq.ASCII())

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFastqReader(t *testing.T) {
	data := "@read1\nACGT\n+\nIIII\n"
	r := seq.NewFastqReader(strings.NewReader(data))
	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "read1", rec.Name)
	assert.Equal(t, []byte("ACGT"), rec.Seq.ASCII())
	assert.Equal(t, []byte("IIII"), rec.Seq.Qual)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFastqReaderRejectsMismatch(t *testing.T) {
	data := "@read1\nACGT\n+\nII\n"
	r := seq.NewFastqReader(strings.NewReader(data))
	_, err := r.Next()
	require.Error(t, err)
}
