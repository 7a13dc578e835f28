// Package pack implements PackedReference (spec §3, §4.1, §6): an immutable,
// 2-bit packed forward-strand reference genome with a virtual reverse
// strand, contig table, and N-region ("hole") table.
package pack

import (
	"sort"

	"github.com/grailbio/bioalign/bioalignerr"
	"github.com/grailbio/bioalign/seq"
)

// Contig describes one contig of the packed reference.
type Contig struct {
	Name     string
	Comment  string
	Start    int64 // forward-strand offset of the first base
	Length   int64
	NumHoles int
}

// Hole describes one N-region of the forward strand.
type Hole struct {
	Offset int64
	Length int64
	Char   byte // ASCII character the hole expands to, almost always 'N'
}

// Pack is an immutable packed reference: a 2-bit-per-base forward strand,
// plus the contig and hole tables needed to reconstruct any sub-range,
// including the virtual reverse strand (spec §3).
type Pack struct {
	// packed holds 4 symbol codes per byte, most-significant pair first,
	// exactly as spec §6 describes the .pac layout.
	packed  []byte
	fwdSize int64
	contigs []Contig
	holes   []Hole
}

// FwdSize returns the length of the forward strand, in bases.
func (p *Pack) FwdSize() int64 { return p.fwdSize }

// TotalSize returns the combined length of the forward and virtual reverse
// strands.
func (p *Pack) TotalSize() int64 { return 2 * p.fwdSize }

// Contigs returns the contig table, ordered by ascending Start.
func (p *Pack) Contigs() []Contig { return p.contigs }

// Holes returns the hole table, ordered by ascending Offset.
func (p *Pack) Holes() []Hole { return p.holes }

// ForwardBases unpacks the entire forward strand, holes expanded to N,
// ignoring contig boundaries. Unlike Extract, this never fails on
// bridging: a full-genome unpacked view is exactly what building an
// FM-index/BWT over the forward+reverse-complement concatenation needs
// (spec §4.1's virtual reverse strand is defined over this same
// concatenation), and bridging is a constraint on alignment *extraction*,
// not on index construction.
func (p *Pack) ForwardBases() []byte { return p.extractForward(0, p.fwdSize) }

// IsOnReverse reports whether pos lies on the virtual reverse strand
// (spec §3: pos >= fwdSize).
func (p *Pack) IsOnReverse(pos int64) bool { return pos >= p.fwdSize }

// mirror maps a position on one strand to its mirror on the other, per
// spec §3: pos -> 2*fwdSize - pos - 1.
func (p *Pack) mirror(pos int64) int64 { return 2*p.fwdSize - pos - 1 }

// ContigOf returns the index of the contig containing the given
// forward-strand position, via binary search on contig start offsets
// (spec §4.1, O(log C)). pos must already be folded onto the forward
// strand by the caller.
func (p *Pack) ContigOf(fwdPos int64) (int, error) {
	if fwdPos < 0 || fwdPos >= p.fwdSize {
		return 0, bioalignerr.New(bioalignerr.InvalidInput, "pack: position %d out of range [0,%d)", fwdPos, p.fwdSize)
	}
	i := sort.Search(len(p.contigs), func(i int) bool {
		return p.contigs[i].Start+p.contigs[i].Length > fwdPos
	})
	if i == len(p.contigs) {
		return 0, bioalignerr.New(bioalignerr.InvalidInput, "pack: position %d not covered by any contig", fwdPos)
	}
	return i, nil
}

// toForward folds a possibly-reverse-strand position onto the forward
// strand, returning the folded position and whether it came from the
// reverse strand.
func (p *Pack) toForward(pos int64) (fwd int64, reverse bool) {
	if p.IsOnReverse(pos) {
		return p.mirror(pos), true
	}
	return pos, false
}

// Bridging reports whether the half-open range [begin, begin+size) spans a
// contig boundary or the forward/reverse midpoint (spec §3, §4.1).
func (p *Pack) Bridging(begin, size int64) bool {
	end := begin + size
	if size <= 0 {
		return false
	}
	beginReverse := p.IsOnReverse(begin)
	endReverse := p.IsOnReverse(end - 1)
	if beginReverse != endReverse {
		return true
	}
	fwdBegin, _ := p.toForward(begin)
	fwdEndIncl, _ := p.toForward(end - 1)
	lo, hi := fwdBegin, fwdEndIncl
	if beginReverse {
		// On the reverse strand, increasing pos maps to decreasing forward
		// position, so the forward range is [hi, lo].
		lo, hi = hi, lo
	}
	ci, err := p.ContigOf(lo)
	if err != nil {
		return true
	}
	return hi >= p.contigs[ci].Start+p.contigs[ci].Length
}

// Extract returns the NucSeq covering [begin, end) of the combined
// forward+reverse coordinate space, expanding holes to N on demand and
// reverse-complementing when the range lies on the virtual reverse strand.
func (p *Pack) Extract(begin, end int64) (*seq.NucSeq, error) {
	if begin < 0 || end > p.TotalSize() || begin > end {
		return nil, bioalignerr.New(bioalignerr.InvalidInput, "pack: extract range [%d,%d) out of range [0,%d)", begin, end, p.TotalSize())
	}
	size := end - begin
	if size == 0 {
		return &seq.NucSeq{}, nil
	}
	if p.Bridging(begin, size) {
		return nil, bioalignerr.New(bioalignerr.InvalidInput, "pack: extract range [%d,%d) bridges a contig or strand boundary", begin, end)
	}
	reverse := p.IsOnReverse(begin)
	var fwdBegin, fwdEnd int64
	if reverse {
		fwdBegin, _ = p.toForward(end - 1)
		fwdEnd = p.toForward1(begin) + 1
	} else {
		fwdBegin, fwdEnd = begin, end
	}
	bases := p.extractForward(fwdBegin, fwdEnd)
	ns := &seq.NucSeq{Bases: bases}
	if reverse {
		ns.Bases = seq.ReverseComplement(bases)
	}
	return ns, nil
}

// toForward1 is toForward without the reverse flag, used where only the
// folded coordinate is needed.
func (p *Pack) toForward1(pos int64) int64 {
	fwd, _ := p.toForward(pos)
	return fwd
}

// extractForward returns the forward-strand bases of [fwdBegin, fwdEnd),
// unpacking the 2-bit representation and expanding holes to N via a merging
// walk over the sorted hole list (spec §4.1).
func (p *Pack) extractForward(fwdBegin, fwdEnd int64) []byte {
	n := fwdEnd - fwdBegin
	out := make([]byte, n)
	for i := int64(0); i < n; i++ {
		out[i] = p.baseAt(fwdBegin + i)
	}
	// idx finds the first hole whose end is > fwdBegin, then walks
	// forward overwriting any overlapping region with its hole character.
	idx := sort.Search(len(p.holes), func(i int) bool {
		return p.holes[i].Offset+p.holes[i].Length > fwdBegin
	})
	for ; idx < len(p.holes); idx++ {
		h := p.holes[idx]
		if h.Offset >= fwdEnd {
			break
		}
		lo := h.Offset
		if lo < fwdBegin {
			lo = fwdBegin
		}
		hi := h.Offset + h.Length
		if hi > fwdEnd {
			hi = fwdEnd
		}
		code := seq.EncodeByte(h.Char)
		for i := lo; i < hi; i++ {
			out[i-fwdBegin] = code
		}
	}
	return out
}

// baseAt unpacks a single 2-bit symbol from the forward strand.
func (p *Pack) baseAt(fwdPos int64) byte {
	byteIdx := fwdPos / 4
	shift := uint((3 - fwdPos%4) * 2)
	return (p.packed[byteIdx] >> shift) & 0x3
}

// Builder accumulates contigs into a Pack under construction. Contigs must
// be appended in order; holes are derived automatically from runs of N in
// each contig's sequence.
type Builder struct {
	packed   []byte
	bitIndex uint // number of 2-bit symbols written so far
	contigs  []Contig
	holes    []Hole
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// AddContig appends a contig's forward-strand bases (symbol codes, N-coded
// runs become holes). Returns an error if any symbol is invalid.
func (b *Builder) AddContig(name, comment string, bases []byte) error {
	start := int64(b.bitIndex)
	numHoles := 0
	var holeStart int64 = -1
	for i, base := range bases {
		if base > seq.N {
			return bioalignerr.New(bioalignerr.InvalidInput, "pack: invalid symbol code %d in contig %q", base, name)
		}
		pos := start + int64(i)
		if base == seq.N {
			if holeStart < 0 {
				holeStart = pos
			}
		} else if holeStart >= 0 {
			b.holes = append(b.holes, Hole{Offset: holeStart, Length: pos - holeStart, Char: 'N'})
			numHoles++
			holeStart = -1
		}
		b.appendBase(base)
	}
	if holeStart >= 0 {
		b.holes = append(b.holes, Hole{Offset: holeStart, Length: start + int64(len(bases)) - holeStart, Char: 'N'})
		numHoles++
	}
	b.contigs = append(b.contigs, Contig{Name: name, Comment: comment, Start: start, Length: int64(len(bases)), NumHoles: numHoles})
	return nil
}

func (b *Builder) appendBase(base byte) {
	byteIdx := b.bitIndex / 4
	shift := uint((3 - b.bitIndex%4) * 2)
	for int(byteIdx) >= len(b.packed) {
		b.packed = append(b.packed, 0)
	}
	// Only the low 2 bits fit a slot; N (4) is stored as 0 and restored
	// from the hole table on extraction.
	b.packed[byteIdx] |= (base & 0x3) << shift
	b.bitIndex++
}

// Build finalizes the Builder into an immutable Pack.
func (b *Builder) Build() *Pack {
	return &Pack{
		packed:  b.packed,
		fwdSize: int64(b.bitIndex),
		contigs: append([]Contig(nil), b.contigs...),
		holes:   append([]Hole(nil), b.holes...),
	}
}
