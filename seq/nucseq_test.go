package seq_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/bioalign/seq"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ascii := []byte("ACGTNacgtnX")
	codes := seq.Encode(ascii)
	assert.Equal(t, []byte{seq.A, seq.C, seq.G, seq.T, seq.N, seq.A, seq.C, seq.G, seq.T, seq.N, seq.N}, codes)
	assert.Equal(t, []byte("ACGTNACGTNN"), seq.Decode(codes))
}

func TestReverseComplement(t *testing.T) {
	codes := seq.Encode([]byte("ACGTN"))
	rc := seq.ReverseComplement(codes)
	assert.Equal(t, []byte("NACGT"), seq.Decode(rc))
}

func TestNewRejectsInvalidSymbol(t *testing.T) {
	_, err := seq.New("x", []byte{0, 1, 2, 3, 4, 5}, nil)
	require.Error(t, err)
}

func TestNewRejectsQualLengthMismatch(t *testing.T) {
	_, err := seq.New("x", []byte{0, 1, 2}, []byte{10, 10})
	require.Error(t, err)
}

func TestNucSeqReverseComplementPreservesQual(t *testing.T) {
	s := seq.FromASCII("r", []byte("ACGT"), []byte{1, 2, 3, 4})
	rc := s.ReverseComplement()
	assert.Equal(t, []byte("ACGT"), rc.ASCII())
	assert.Equal(t, []byte{4, 3, 2, 1}, rc.Qual)
}
