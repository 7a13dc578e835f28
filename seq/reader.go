package seq

import (
	"bufio"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Record is a single sequence read off an input stream, satisfying spec §6's
// "Input stream contract": (name, bytes, optional quality).
type Record struct {
	Name string
	Seq  *NucSeq
}

// bufferInitSize mirrors encoding/fasta's generous scanner buffer, sized for
// chromosome-length lines rather than BED/FASTQ-length ones.
const bufferInitSize = 1024 * 1024 * 64

// OpenMaybeGzip wraps r in a gzip.Reader if the stream is gzip-compressed,
// detected by magic number, matching how FASTQ inputs are commonly
// distributed. Mirrors the teacher's use of klauspost/compress/gzip in
// interval/bedunion.go and encoding/fastq's downsample path.
func OpenMaybeGzip(r *bufio.Reader) (io.Reader, error) {
	magic, err := r.Peek(2)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "seq: failed to sniff input stream")
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "seq: failed to open gzip stream")
		}
		return gz, nil
	}
	return r, nil
}

// FastaReader reads FASTA records, generalizing encoding/fasta.New's
// scan-and-accumulate loop to stream records one at a time instead of
// slurping the whole file into a map.
type FastaReader struct {
	scanner  *bufio.Scanner
	pending  string // header name of the record currently being accumulated
	have     bool
	lastLine string
	atEOF    bool
}

// NewFastaReader constructs a streaming FASTA reader over r.
func NewFastaReader(r io.Reader) *FastaReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, bufferInitSize)
	return &FastaReader{scanner: sc}
}

// Next returns the next FASTA record, or io.EOF when the stream is
// exhausted.
func (f *FastaReader) Next() (*Record, error) {
	if f.atEOF && !f.have {
		return nil, io.EOF
	}
	var name string
	var seq strings.Builder
	if f.have {
		name = f.pending
		f.have = false
	}
	for f.scanner.Scan() {
		line := f.scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if name == "" {
				name = strings.Split(line[1:], " ")[0]
				continue
			}
			f.pending = strings.Split(line[1:], " ")[0]
			f.have = true
			return &Record{Name: name, Seq: FromASCII(name, []byte(seq.String()), nil)}, nil
		}
		seq.WriteString(line)
	}
	f.atEOF = true
	if err := f.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "seq: failed to read FASTA data")
	}
	if name == "" {
		return nil, io.EOF
	}
	return &Record{Name: name, Seq: FromASCII(name, []byte(seq.String()), nil)}, nil
}

// FastqReader reads FASTQ records four lines at a time, the way
// encoding/fastq.Scanner does, but translated straight into NucSeq.
type FastqReader struct {
	scanner *bufio.Scanner
}

// NewFastqReader constructs a streaming FASTQ reader over r.
func NewFastqReader(r io.Reader) *FastqReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, bufferInitSize)
	return &FastqReader{scanner: sc}
}

// Next returns the next FASTQ record, or io.EOF when exhausted.
func (f *FastqReader) Next() (*Record, error) {
	if !f.scanner.Scan() {
		if err := f.scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "seq: failed to read FASTQ header")
		}
		return nil, io.EOF
	}
	header := f.scanner.Text()
	if len(header) == 0 || header[0] != '@' {
		return nil, errors.Errorf("seq: malformed FASTQ header %q", header)
	}
	name := strings.Split(header[1:], " ")[0]
	if !f.scanner.Scan() {
		return nil, errors.Errorf("seq: truncated FASTQ record %q", name)
	}
	seqLine := f.scanner.Text()
	if !f.scanner.Scan() {
		return nil, errors.Errorf("seq: truncated FASTQ record %q", name)
	}
	plus := f.scanner.Text()
	if len(plus) == 0 || plus[0] != '+' {
		return nil, errors.Errorf("seq: malformed FASTQ separator for %q", name)
	}
	if !f.scanner.Scan() {
		return nil, errors.Errorf("seq: truncated FASTQ record %q", name)
	}
	qualLine := f.scanner.Text()
	if len(qualLine) != len(seqLine) {
		return nil, errors.Errorf("seq: FASTQ seq/qual length mismatch for %q", name)
	}
	return &Record{Name: name, Seq: FromASCII(name, []byte(seqLine), []byte(qualLine))}, nil
}
