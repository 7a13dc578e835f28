package pack

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/grailbio/bioalign/bioalignerr"
)

// Store writes the three files of spec §6 sharing the given path prefix:
// <prefix>.pac, <prefix>.ann, <prefix>.amb. Mirrors the way
// encoding/bam/index.go treats a bespoke binary layout as a direct
// read/write pair rather than reaching for a generic serialization library.
func (p *Pack) Store(prefix string) error {
	if err := p.writePac(prefix + ".pac"); err != nil {
		return err
	}
	if err := p.writeAnn(prefix + ".ann"); err != nil {
		return err
	}
	if err := p.writeAmb(prefix + ".amb"); err != nil {
		return err
	}
	return nil
}

func (p *Pack) writePac(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "pack: creating .pac file")
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if _, err := w.Write(p.packed); err != nil {
		return errors.Wrap(err, "pack: writing .pac body")
	}
	// spec §6/§4.1: if fwdSize % 4 == 0 a zero sentinel byte precedes the
	// checksum byte.
	if p.fwdSize%4 == 0 {
		if err := w.WriteByte(0); err != nil {
			return errors.Wrap(err, "pack: writing .pac sentinel byte")
		}
	}
	if err := w.WriteByte(byte(p.fwdSize % 4)); err != nil {
		return errors.Wrap(err, "pack: writing .pac checksum byte")
	}
	return w.Flush()
}

func (p *Pack) writeAnn(path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %d %d\n", p.fwdSize, len(p.contigs), 11)
	for i, c := range p.contigs {
		fmt.Fprintf(&b, "%d %s %s\n", i, c.Name, c.Comment)
		fmt.Fprintf(&b, "%d %d %d\n", c.Start, c.Length, c.NumHoles)
	}
	return ioutil.WriteFile(path, []byte(b.String()), 0o644)
}

func (p *Pack) writeAmb(path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %d %d\n", p.fwdSize, len(p.contigs), len(p.holes))
	for _, h := range p.holes {
		fmt.Fprintf(&b, "%d %d %c\n", h.Offset, h.Length, h.Char)
	}
	return ioutil.WriteFile(path, []byte(b.String()), 0o644)
}

// Load reads back a Pack previously written by Store.
func Load(prefix string) (*Pack, error) {
	contigs, fwdSize, err := readAnn(prefix + ".ann")
	if err != nil {
		return nil, err
	}
	holes, err := readAmb(prefix + ".amb")
	if err != nil {
		return nil, err
	}
	packed, err := readPac(prefix+".pac", fwdSize)
	if err != nil {
		return nil, err
	}
	return &Pack{packed: packed, fwdSize: fwdSize, contigs: contigs, holes: holes}, nil
}

func readPac(path string, fwdSize int64) ([]byte, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "pack: reading .pac file")
	}
	bodyLen := int((fwdSize + 3) / 4)
	if len(data) < bodyLen+1 {
		return nil, bioalignerr.New(bioalignerr.InvalidInput, "pack: .pac file %q too short", path)
	}
	checksum := data[len(data)-1]
	if int64(checksum) != fwdSize%4 {
		return nil, bioalignerr.New(bioalignerr.InvalidInput, "pack: .pac checksum mismatch in %q: got %d want %d", path, checksum, fwdSize%4)
	}
	return append([]byte(nil), data[:bodyLen]...), nil
}

func readAnn(path string) ([]Contig, int64, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "pack: reading .ann file")
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 {
		return nil, 0, bioalignerr.New(bioalignerr.InvalidInput, "pack: empty .ann file %q", path)
	}
	header := strings.Fields(lines[0])
	if len(header) < 2 {
		return nil, 0, bioalignerr.New(bioalignerr.InvalidInput, "pack: malformed .ann header in %q", path)
	}
	fwdSize, err := strconv.ParseInt(header[0], 10, 64)
	if err != nil {
		return nil, 0, bioalignerr.Wrap(bioalignerr.InvalidInput, err, "pack: malformed .ann fwdSize")
	}
	numContigs, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, 0, bioalignerr.Wrap(bioalignerr.InvalidInput, err, "pack: malformed .ann numContigs")
	}
	contigs := make([]Contig, 0, numContigs)
	idx := 1
	for i := 0; i < numContigs; i++ {
		if idx+1 >= len(lines) {
			return nil, 0, bioalignerr.New(bioalignerr.InvalidInput, "pack: truncated .ann file %q", path)
		}
		nameLine := strings.SplitN(lines[idx], " ", 3)
		var name, comment string
		if len(nameLine) >= 2 {
			name = nameLine[1]
		}
		if len(nameLine) >= 3 {
			comment = nameLine[2]
		}
		fields := strings.Fields(lines[idx+1])
		if len(fields) < 3 {
			return nil, 0, bioalignerr.New(bioalignerr.InvalidInput, "pack: malformed contig record in %q", path)
		}
		start, _ := strconv.ParseInt(fields[0], 10, 64)
		length, _ := strconv.ParseInt(fields[1], 10, 64)
		numHoles, _ := strconv.Atoi(fields[2])
		contigs = append(contigs, Contig{Name: name, Comment: comment, Start: start, Length: length, NumHoles: numHoles})
		idx += 2
	}
	return contigs, fwdSize, nil
}

func readAmb(path string) ([]Hole, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "pack: reading .amb file")
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 {
		return nil, bioalignerr.New(bioalignerr.InvalidInput, "pack: empty .amb file %q", path)
	}
	header := strings.Fields(lines[0])
	if len(header) < 3 {
		return nil, bioalignerr.New(bioalignerr.InvalidInput, "pack: malformed .amb header in %q", path)
	}
	numHoles, err := strconv.Atoi(header[2])
	if err != nil {
		return nil, bioalignerr.Wrap(bioalignerr.InvalidInput, err, "pack: malformed .amb numHoles")
	}
	holes := make([]Hole, 0, numHoles)
	for i := 0; i < numHoles; i++ {
		if i+1 >= len(lines) {
			return nil, bioalignerr.New(bioalignerr.InvalidInput, "pack: truncated .amb file %q", path)
		}
		fields := strings.Fields(lines[i+1])
		if len(fields) < 3 {
			return nil, bioalignerr.New(bioalignerr.InvalidInput, "pack: malformed hole record in %q", path)
		}
		offset, _ := strconv.ParseInt(fields[0], 10, 64)
		length, _ := strconv.ParseInt(fields[1], 10, 64)
		holes = append(holes, Hole{Offset: offset, Length: length, Char: fields[2][0]})
	}
	return holes, nil
}
