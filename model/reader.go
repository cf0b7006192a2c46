package model

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/mmap"
)

const (
	readBufferSize = 1 << 20
	maxTextLine    = 64 << 20
	sniffSize      = 4096

	// maxDim bounds the vector width a header may declare.
	maxDim = 1 << 16
	// maxPrealloc bounds the up-front slice capacity taken from a header
	// count; larger vocabularies grow by append.
	maxPrealloc = 1 << 16
	// cancelCheckEvery is how many records are read between context checks.
	cancelCheckEvery = 4096
)

var gzipMagic = []byte{0x1f, 0x8b}

// ReadFile memory-maps path and decodes it. Gzip-compressed files are
// detected by their magic bytes and decompressed on the fly. Reading stops
// with ctx.Err() once ctx is done.
func ReadFile(ctx context.Context, path string, opts ...Option) (*Embeddings, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open %s: %w", path, err)
	}
	defer m.Close()

	var r io.Reader = io.NewSectionReader(m, 0, int64(m.Len()))
	br := bufio.NewReaderSize(r, readBufferSize)
	if magic, _ := br.Peek(len(gzipMagic)); bytes.Equal(magic, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("model: gzip %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	} else {
		r = br
	}
	e, err := Read(ctx, r, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return e, nil
}

// Read decodes an embedding stream. Without WithFormat the layout is sniffed
// from the bytes following the first line.
func Read(ctx context.Context, r io.Reader, opts ...Option) (*Embeddings, error) {
	o := newOptions(opts)
	br := bufio.NewReaderSize(r, readBufferSize)
	format := o.format
	if format == FormatAuto {
		format = sniff(br)
	}
	if format == FormatBinary {
		return readBinary(ctx, br, o)
	}
	return readText(ctx, br, o)
}

// sniff reports FormatBinary when the bytes after the header line are not
// plain text.
func sniff(br *bufio.Reader) Format {
	peek, _ := br.Peek(sniffSize)
	nl := bytes.IndexByte(peek, '\n')
	if nl < 0 {
		return FormatText
	}
	if _, _, ok := parseHeader(string(peek[:nl])); !ok {
		return FormatText
	}
	body := peek[nl+1:]
	// a multi-byte rune may be cut at the end of the peek window
	if len(body) > utf8.UTFMax {
		body = body[:len(body)-utf8.UTFMax]
	}
	if !utf8.Valid(body) {
		return FormatBinary
	}
	for _, b := range body {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			return FormatBinary
		}
	}
	return FormatText
}

func parseHeader(line string) (count, dim int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, false
	}
	count, err1 := strconv.Atoi(fields[0])
	dim, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || count < 0 || dim < 0 || dim > maxDim || (dim == 0 && count > 0) {
		return 0, 0, false
	}
	return count, dim, true
}

func readBinary(ctx context.Context, br *bufio.Reader, o options) (*Embeddings, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("model: binary header: %w", err)
	}
	count, dim, ok := parseHeader(line)
	if !ok {
		return nil, fmt.Errorf("model: malformed binary header %q", strings.TrimSpace(line))
	}
	e := &Embeddings{
		Terms:   make([]string, 0, capacity(count, o)),
		Vectors: make([][]float32, 0, capacity(count, o)),
	}
	raw := make([]byte, 4*dim)
	for n := 0; n < count && !o.reached(n); n++ {
		if err := checkCanceled(ctx, n); err != nil {
			return nil, err
		}
		term, err := readBinaryTerm(br)
		if err != nil {
			return nil, fmt.Errorf("model: term %d: %w", n, err)
		}
		if _, err := io.ReadFull(br, raw); err != nil {
			return nil, fmt.Errorf("model: vector for %q: %w", term, err)
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*j:]))
		}
		e.add(term, vec)
	}
	return e, nil
}

// readBinaryTerm reads a space-terminated term, skipping the newline that
// some writers put after each record.
func readBinaryTerm(br *bufio.Reader) (string, error) {
	var buf []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return "", err
		}
		if b == ' ' {
			if len(buf) == 0 {
				continue
			}
			return string(buf), nil
		}
		if b == '\n' && len(buf) == 0 {
			continue
		}
		buf = append(buf, b)
	}
}

func readText(ctx context.Context, br *bufio.Reader, o options) (*Embeddings, error) {
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, readBufferSize), maxTextLine)
	e := &Embeddings{}
	dim, lineNo := 0, 0
	for sc.Scan() && !o.reached(e.Len()) {
		if err := checkCanceled(ctx, lineNo); err != nil {
			return nil, err
		}
		lineNo++
		line := strings.TrimRight(sc.Text(), " \r\t")
		if line == "" {
			continue
		}
		if lineNo == 1 {
			if _, d, ok := parseHeader(line); ok {
				dim = d
				continue
			}
		}
		fields := strings.Split(line, " ")
		if dim == 0 {
			dim = len(fields) - 1
			if dim <= 0 {
				return nil, fmt.Errorf("model: line %d: no vector components", lineNo)
			}
		}
		if len(fields) != dim+1 {
			return nil, fmt.Errorf("model: line %d: %d components, want %d", lineNo, len(fields)-1, dim)
		}
		vec := make([]float32, dim)
		for j, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("model: line %d: %w", lineNo, err)
			}
			vec[j] = float32(v)
		}
		e.add(fields[0], vec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("model: text: %w", err)
	}
	return e, nil
}

func capacity(count int, o options) int {
	if o.limit > 0 && o.limit < count {
		count = o.limit
	}
	return min(count, maxPrealloc)
}

func checkCanceled(ctx context.Context, n int) error {
	if n%cancelCheckEvery != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("model: read canceled after %d records: %w", n, err)
	}
	return nil
}
