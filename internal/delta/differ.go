// Package delta implements the Differ/Patcher pair: Diff produces a
// compressed instruction stream transforming a source byte range into a
// target byte range; Patch is its inverse.
package delta

import (
	"errors"

	"golang.org/x/xerrors"

	yatta "github.com/Yattabyte/Installer"
	"github.com/Yattabyte/Installer/internal/buffer"
	"github.com/Yattabyte/Installer/internal/codec"
	"github.com/Yattabyte/Installer/internal/frame"
	"github.com/Yattabyte/Installer/internal/memrange"
)

// MinMatch is the shortest COPY the differ will emit; shorter matches are
// folded into the surrounding INSERT run instead. spec.md §9(b) leaves this
// open in [4, 32]; 8 is the suggested default.
const MinMatch = 8

// windowSize is the width of the rolling hash-chain index key. It must be
// <= MinMatch so that every eligible match is found through the index.
const windowSize = 4

// maxChainProbe bounds how many candidates are visited per hash bucket,
// keeping the differ's worst case linear-ish on pathologically repetitive
// input while staying fully deterministic (same input, same probe order,
// same output).
const maxChainProbe = 64

var (
	// ErrBadInstruction is returned by the patcher when an instruction
	// references out-of-range source bytes or would overflow the target.
	ErrBadInstruction = errors.New("delta: bad instruction")
	// ErrTruncated is returned when a patch's instruction stream ends before
	// producing the promised target size.
	ErrTruncated = errors.New("delta: truncated")
)

// ErrBadHeader re-exports frame.ErrBadHeader for callers that only import
// delta.
var ErrBadHeader = frame.ErrBadHeader

// index is a hash-chain over 4-byte windows of a source buffer, supporting
// "longest match at source starting anywhere, for the bytes at a given
// target offset".
type index struct {
	source []byte
	head   map[uint32]int
	prev   []int // prev[i] = previous source position sharing head's bucket
}

func buildIndex(source []byte) *index {
	idx := &index{
		source: source,
		head:   make(map[uint32]int),
		prev:   make([]int, len(source)),
	}
	for i := range idx.prev {
		idx.prev[i] = -1
	}
	if len(source) < windowSize {
		return idx
	}
	for i := 0; i <= len(source)-windowSize; i++ {
		h := window(source, i)
		if last, ok := idx.head[h]; ok {
			idx.prev[i] = last
		} else {
			idx.prev[i] = -1
		}
		idx.head[h] = i
	}
	return idx
}

func window(b []byte, i int) uint32 {
	return uint32(b[i]) | uint32(b[i+1])<<8 | uint32(b[i+2])<<16 | uint32(b[i+3])<<24
}

// longestMatch returns the longest run of bytes starting at some source
// offset that equals target[t:], along with that offset, among the first
// maxChainProbe candidates of target[t:t+4]'s bucket. The chain is walked
// from the largest source position downward, and ties on length go to the
// smallest offset among the visited candidates. Candidates past the probe
// bound are not examined, so a longer match, or an equal one at a smaller
// offset, further down a long chain is not found.
func (idx *index) longestMatch(target []byte, t int) (offset, length int, found bool) {
	if len(target)-t < windowSize || len(idx.source) < windowSize {
		return 0, 0, false
	}
	h := window(target, t)
	pos, ok := idx.head[h]
	if !ok {
		return 0, 0, false
	}

	bestOffset, bestLength := 0, 0
	maxLen := len(target) - t
	for probes := 0; pos >= 0 && probes < maxChainProbe; probes++ {
		l := matchLength(idx.source[pos:], target[t:], maxLen)
		if l > bestLength || (l == bestLength && l > 0 && pos < bestOffset) {
			bestOffset, bestLength = pos, l
		}
		pos = idx.prev[pos]
	}
	if bestLength == 0 {
		return 0, 0, false
	}
	return bestOffset, bestLength, true
}

func matchLength(a, b []byte, max int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if max < n {
		n = max
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// Diff produces a compressed instruction stream transforming source into
// target: COPY instructions for runs of at least MinMatch bytes shared with
// source, INSERT instructions for everything else.
func Diff(source, target memrange.Range) (*buffer.Buffer, error) {
	S := source.Bytes()
	T := target.Bytes()

	payload := buffer.New(0)

	if len(T) == 0 {
		return wrapPatch(payload, 0)
	}

	idx := buildIndex(S)

	var literalStart = -1
	flushLiteral := func(end int) {
		if literalStart < 0 {
			return
		}
		NewInsert(T[literalStart:end]).encode(payload)
		literalStart = -1
	}

	t := 0
	for t < len(T) {
		offset, length, found := idx.longestMatch(T, t)
		if found && length >= MinMatch {
			flushLiteral(t)
			NewCopy(uint64(offset), uint64(length)).encode(payload)
			t += length
			continue
		}
		if literalStart < 0 {
			literalStart = t
		}
		t++
	}
	flushLiteral(t)

	return wrapPatch(payload, uint64(len(T)))
}

// wrapPatch compresses payload and wraps it in a "yatta patch  " frame whose
// size field is targetSize.
func wrapPatch(payload *buffer.Buffer, targetSize uint64) (*buffer.Buffer, error) {
	compressed, err := codec.RawCompress(payload.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("delta.Diff: %w", err)
	}
	return codec.Frame(yatta.TagPatch, targetSize, compressed), nil
}
