package index

import (
	"fmt"
	"strings"

	"github.com/DanielSebasCM/research-stay-2024/index/bruteforce"
	"github.com/DanielSebasCM/research-stay-2024/index/cover"
)

// Kind selects an Index implementation.
type Kind string

const (
	KindAuto  Kind = "auto"
	KindBrute Kind = "brute"
	KindCover Kind = "cover"
)

const (
	autoCoverMinTerms           = 4000
	autoCoverMinDim             = 64
	autoCoverMinDensity float64 = 16
)

// ParseKind parses a kind name; the empty string means KindAuto.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindAuto:
		return KindAuto, nil
	case KindBrute, "bruteforce":
		return KindBrute, nil
	case KindCover:
		return KindCover, nil
	}
	return "", fmt.Errorf("index: unknown kind %q (want auto, brute or cover)", s)
}

// Resolve turns KindAuto into a concrete kind for n vectors of dimension dim.
// The cover tree only pays off for large vocabularies that are dense relative
// to their dimension.
func Resolve(kind Kind, n, dim int) Kind {
	if kind == KindBrute || kind == KindCover {
		return kind
	}
	if n >= autoCoverMinTerms && dim >= autoCoverMinDim {
		if float64(n)/float64(dim) >= autoCoverMinDensity {
			return KindCover
		}
	}
	return KindBrute
}

// New returns an empty index of the resolved kind.
func New(kind Kind, n, dim int) Index {
	if Resolve(kind, n, dim) == KindCover {
		return cover.New()
	}
	return &bruteforce.Index{}
}

var (
	_ Index = (*bruteforce.Index)(nil)
	_ Index = (*cover.Index)(nil)
)
