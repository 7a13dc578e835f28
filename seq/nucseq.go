// Package seq provides the NucSeq value type (spec §3) — an owned,
// resizable sequence of 3-bit symbols — plus the ASCII translation tables and
// ingestion adapters that feed it from FASTA/FASTQ records.
package seq

import (
	"github.com/pkg/errors"

	"github.com/grailbio/base/simd"
)

// Symbol codes, per spec §3: every stored symbol is one of these five values.
const (
	A byte = 0
	C byte = 1
	G byte = 2
	T byte = 3
	N byte = 4
)

// asciiToCode maps every byte value to its 3-bit symbol code. Non-ACGTN
// letters map to N, matching spec §6's "everything else -> 4" input-stream
// contract.
var asciiToCode [256]byte

// codeToASCII maps the five symbol codes back to their canonical uppercase
// ASCII letter.
var codeToASCII = [5]byte{'A', 'C', 'G', 'T', 'N'}

func init() {
	for i := range asciiToCode {
		asciiToCode[i] = N
	}
	asciiToCode['A'], asciiToCode['a'] = A, A
	asciiToCode['C'], asciiToCode['c'] = C, C
	asciiToCode['G'], asciiToCode['g'] = G, G
	asciiToCode['T'], asciiToCode['t'] = T, T
	asciiToCode['N'], asciiToCode['n'] = N, N
}

// EncodeByte translates a single ASCII base to its symbol code.
func EncodeByte(b byte) byte { return asciiToCode[b] }

// DecodeByte translates a symbol code back to its canonical ASCII base.
// Panics if code > 4, the same invariant violation spec §3 calls fatal.
func DecodeByte(code byte) byte {
	if code > N {
		panic(errors.Errorf("seq: invalid symbol code %d", code))
	}
	return codeToASCII[code]
}

// Encode translates an ASCII nucleotide string to symbol codes in place of a
// freshly allocated slice.
func Encode(ascii []byte) []byte {
	out := make([]byte, len(ascii))
	for i, b := range ascii {
		out[i] = asciiToCode[b]
	}
	return out
}

// Decode translates symbol codes back to an ASCII byte slice.
func Decode(codes []byte) []byte {
	out := make([]byte, len(codes))
	for i, c := range codes {
		out[i] = DecodeByte(c)
	}
	return out
}

// complementTable gives the complement code of every symbol code; used by
// ReverseComplement below. N complements to N.
var complementTable = [5]byte{T, G, C, A, N}

// ComplementByte complements a single symbol code: 3-code for codes < 4, N
// otherwise, per spec §3.
func ComplementByte(code byte) byte {
	if code > N {
		panic(errors.Errorf("seq: invalid symbol code %d", code))
	}
	return complementTable[code]
}

// ReverseComplement returns the reverse complement of codes, the same
// reverse-then-xor-with-3 idiom as the teacher's biosimd.ReverseComp2, which
// operates on this exact ACGT=0123 one-byte-per-base encoding via
// simd.Reverse8 and simd.XorConst8Inplace. codes here can also hold N (4),
// which ReverseComp2's raw ACGT domain never sees and which the xor-with-3
// trick would corrupt (4^3 = 7), so N positions are complemented separately
// after the SIMD pass runs over everything else.
func ReverseComplement(codes []byte) []byte {
	out := make([]byte, len(codes))
	simd.Reverse8(out, codes)
	simd.XorConst8Inplace(out, 3)
	for i, c := range out {
		if c^3 == N { // codes[len-1-i] was N; xor with 3 is meaningless for it
			out[i] = N
		}
	}
	return out
}

// NucSeq is an owned, resizable sequence of symbol codes with an optional
// per-base quality track (spec §3).
type NucSeq struct {
	Name  string
	Bases []byte // symbol codes, each <= N
	Qual  []byte // optional; nil if no quality track, else len(Qual) == len(Bases)
}

// New validates and wraps a slice of symbol codes already in {0..4}.
func New(name string, bases []byte, qual []byte) (*NucSeq, error) {
	for _, b := range bases {
		if b > N {
			return nil, errors.Errorf("seq: invalid symbol code %d in sequence %q", b, name)
		}
	}
	if qual != nil && len(qual) != len(bases) {
		return nil, errors.Errorf("seq: quality length %d does not match base length %d", len(qual), len(bases))
	}
	return &NucSeq{Name: name, Bases: bases, Qual: qual}, nil
}

// FromASCII builds a NucSeq from raw ASCII letters (e.g. as read from a
// FASTA/FASTQ record), translating through EncodeByte.
func FromASCII(name string, ascii []byte, qual []byte) *NucSeq {
	return &NucSeq{Name: name, Bases: Encode(ascii), Qual: qual}
}

// Len returns the number of bases.
func (s *NucSeq) Len() int { return len(s.Bases) }

// ReverseComplement returns a new NucSeq holding the reverse complement of
// s, with a reversed quality track if present.
func (s *NucSeq) ReverseComplement() *NucSeq {
	rc := &NucSeq{Name: s.Name, Bases: ReverseComplement(s.Bases)}
	if s.Qual != nil {
		n := len(s.Qual)
		rc.Qual = make([]byte, n)
		for i, q := range s.Qual {
			rc.Qual[n-1-i] = q
		}
	}
	return rc
}

// ASCII renders the sequence back to uppercase ASCII letters.
func (s *NucSeq) ASCII() []byte { return Decode(s.Bases) }
