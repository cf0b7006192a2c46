package report

import (
	"bytes"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/DanielSebasCM/research-stay-2024/embedding"
	"github.com/DanielSebasCM/research-stay-2024/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func animals(t *testing.T) *space.Space {
	t.Helper()
	s, err := space.New(
		[]string{"cat", "cats", "kitten", "feline", "dog", "puppy", "house", "car"},
		[][]float32{
			{1, 0.1, 0, 0},
			{0.98, 0.12, 0.01, 0},
			{0.9, 0.2, 0, 0.05},
			{0.85, 0.05, 0.1, 0.1},
			{0.6, 0.6, 0, 0},
			{0.5, 0.7, 0.1, 0},
			{0, 0, 1, 0.2},
			{0, 0.1, 0.3, 1},
		},
	)
	require.NoError(t, err)
	return s
}

var linePattern = regexp.MustCompile(`^(.+): (-?\d+\.\d{2})$`)

func TestReportEndToEnd(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, New(&out).Report(animals(t), []string{"cat"}, 5))

	lines := strings.Split(out.String(), "\n")
	require.Equal(t, "", lines[0])
	require.Equal(t, "Most Similar Words to cat:", lines[1])
	body := lines[2 : len(lines)-1]
	require.Len(t, body, 5)
	assert.Equal(t, "", lines[len(lines)-1], "output ends with a newline")

	prev := math.Inf(1)
	for _, line := range body {
		m := linePattern.FindStringSubmatch(line)
		require.NotNil(t, m, "malformed line %q", line)
		assert.NotEqual(t, "cat", m[1])
		score, err := strconv.ParseFloat(m[2], 64)
		require.NoError(t, err)
		assert.LessOrEqual(t, score, prev)
		prev = score
	}
	assert.True(t, strings.HasPrefix(body[0], "cats: "))
}

func TestReportMultipleQueries(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, New(&out).Report(animals(t), []string{"dog", "house"}, 1))

	want := "\nMost Similar Words to dog:\npuppy: 0.98\n" +
		"\nMost Similar Words to house:\ncar: 0.47\n"
	assert.Equal(t, want, out.String())
}

func TestReportIsIdempotent(t *testing.T) {
	s := animals(t)
	queries := []string{"cat", "dog", "car"}

	var first, second bytes.Buffer
	require.NoError(t, New(&first).Report(s, queries, 3))
	require.NoError(t, New(&second).Report(s, queries, 3))
	assert.Equal(t, first.String(), second.String())
}

func TestReportUnknownTerm(t *testing.T) {
	var out bytes.Buffer
	err := New(&out).Report(animals(t), []string{"dog", "unicorn", "cat"}, 2)

	require.Error(t, err)
	assert.True(t, errors.Is(err, embedding.ErrUnknownTerm))
	var ute *embedding.UnknownTermError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "unicorn", ute.Term)

	assert.Contains(t, out.String(), "Most Similar Words to dog:")
	assert.NotContains(t, out.String(), "unicorn")
	assert.NotContains(t, out.String(), "Most Similar Words to cat:")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestReportWriteError(t *testing.T) {
	err := New(failingWriter{}).Report(animals(t), []string{"cat"}, 1)
	assert.EqualError(t, err, "closed")
}

type fixedSpace []embedding.Neighbor

func (f fixedSpace) VectorOf(string) ([]float32, error) { return nil, nil }
func (f fixedSpace) MostSimilar(string, int) ([]embedding.Neighbor, error) {
	return f, nil
}

func TestNeighbors(t *testing.T) {
	s := fixedSpace{{Term: "a", Score: 0.9}, {Term: "b", Score: 0.5}, {Term: "c", Score: 0.1}}

	seq, err := Neighbors(s, "x", 2)
	require.NoError(t, err)
	var terms []string
	for term := range seq {
		terms = append(terms, term)
	}
	assert.Equal(t, []string{"a", "b"}, terms, "capped at k")

	seq, err = Neighbors(s, "x", 3)
	require.NoError(t, err)
	count := 0
	for range seq {
		count++
		break
	}
	assert.Equal(t, 1, count, "early stop")

	_, err = Neighbors(animals(t), "nope", 3)
	assert.ErrorIs(t, err, embedding.ErrUnknownTerm)
}

func TestFormatScore(t *testing.T) {
	tests := map[string]struct {
		in   float64
		want string
	}{
		"rounds-down":  {in: 0.8234, want: "0.82"},
		"rounds-up":    {in: 0.7666, want: "0.77"},
		"one":          {in: 1.0, want: "1.00"},
		"zero":         {in: 0, want: "0.00"},
		"negative":     {in: -0.456, want: "-0.46"},
		"nan":          {in: math.NaN(), want: "0.00"},
		"positive-inf": {in: math.Inf(1), want: "1.00"},
		"negative-inf": {in: math.Inf(-1), want: "-1.00"},
		"tiny":         {in: 1e-300, want: "0.00"},
		"large":        {in: 12345.678, want: "12345.68"},
	}
	twoDecimals := regexp.MustCompile(`^-?\d+\.\d{2}$`)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := FormatScore(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, twoDecimals, got)
		})
	}
}
