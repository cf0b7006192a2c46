package model

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// WriteBinary writes e in the word2vec binary layout.
func WriteBinary(w io.Writer, e *Embeddings) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", e.Len(), e.Dim()); err != nil {
		return err
	}
	raw := make([]byte, 4*e.Dim())
	for n, term := range e.Terms {
		vec := e.Vectors[n]
		if len(vec) != e.Dim() {
			return fmt.Errorf("model: term %q has dimension %d, want %d", term, len(vec), e.Dim())
		}
		for j, v := range vec {
			binary.LittleEndian.PutUint32(raw[4*j:], math.Float32bits(v))
		}
		bw.WriteString(term)
		bw.WriteByte(' ')
		bw.Write(raw)
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteText writes e in the word2vec text layout, header included.
func WriteText(w io.Writer, e *Embeddings) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", e.Len(), e.Dim()); err != nil {
		return err
	}
	var num []byte
	for n, term := range e.Terms {
		vec := e.Vectors[n]
		if len(vec) != e.Dim() {
			return fmt.Errorf("model: term %q has dimension %d, want %d", term, len(vec), e.Dim())
		}
		bw.WriteString(term)
		for _, v := range vec {
			num = strconv.AppendFloat(num[:0], float64(v), 'g', -1, 32)
			bw.WriteByte(' ')
			bw.Write(num)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
