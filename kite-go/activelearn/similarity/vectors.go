package similarity

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kiteco/activeself/kite-golib/errors"
	"github.com/kiteco/activeself/kite-golib/fileutil"
	"github.com/spf13/afero"
)

// Vectors maps words to embeddings of a fixed dimension.
type Vectors struct {
	Dim   int
	Words map[string][]float32
}

// Lookup returns the embedding of word, if known.
func (v *Vectors) Lookup(word string) ([]float32, bool) {
	vec, ok := v.Words[word]
	return vec, ok
}

// LoadVectors reads embeddings in the word2vec text format, or in the binary
// format when the path ends in .bin. Either may be gzipped (.gz) and read
// from s3 or http(s).
func LoadVectors(fs afero.Fs, path string) (*Vectors, error) {
	r, err := fileutil.NewReader(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening vectors %s", path)
	}
	defer r.Close()

	var in io.Reader = r
	trimmed := path
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "error decompressing vectors %s", path)
		}
		defer gz.Close()
		in = gz
		trimmed = strings.TrimSuffix(path, ".gz")
	}

	var vectors *Vectors
	if strings.HasSuffix(trimmed, ".bin") {
		vectors, err = ReadBinary(in)
	} else {
		vectors, err = ReadText(in)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error reading vectors %s", path)
	}
	return vectors, nil
}

// ReadText parses the word2vec text format. The "count dim" header line is
// optional.
func ReadText(r io.Reader) (*Vectors, error) {
	v := &Vectors{Words: make(map[string][]float32)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<24)
	var lineno int
	for scanner.Scan() {
		lineno++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineno == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				dim, err := strconv.Atoi(fields[1])
				if err != nil {
					return nil, errors.Errorf("bad header %q", scanner.Text())
				}
				v.Dim = dim
				continue
			}
		}

		vec := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, errors.Errorf("line %d: bad component %q", lineno, f)
			}
			vec[i] = float32(x)
		}
		if v.Dim == 0 {
			v.Dim = len(vec)
		}
		if len(vec) != v.Dim {
			return nil, errors.ShapeErrorf("line %d: %d components, expected %d", lineno, len(vec), v.Dim)
		}
		v.Words[fields[0]] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if v.Dim == 0 {
		return nil, errors.Errorf("no vectors found")
	}
	return v, nil
}

// ReadBinary parses the word2vec binary format: a "count dim" header line
// followed, for each word, by the word, a space and dim little-endian
// float32 values.
func ReadBinary(r io.Reader) (*Vectors, error) {
	br := bufio.NewReader(r)

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, errors.Wrapf(err, "error reading header")
	}
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, errors.Errorf("bad header %q", header)
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, errors.Errorf("bad header %q", header)
	}
	dim, err := strconv.Atoi(fields[1])
	if err != nil || dim <= 0 {
		return nil, errors.Errorf("bad header %q", header)
	}

	v := &Vectors{Dim: dim, Words: make(map[string][]float32, count)}
	for i := 0; i < count; i++ {
		word, err := br.ReadString(' ')
		if err != nil {
			return nil, errors.Wrapf(err, "error reading word %d", i)
		}
		word = strings.TrimLeft(strings.TrimSuffix(word, " "), "\n")

		vec := make([]float32, dim)
		if err := binary.Read(br, binary.LittleEndian, vec); err != nil {
			return nil, errors.Wrapf(err, "error reading vector of %q", word)
		}
		v.Words[word] = vec
	}
	return v, nil
}

// mean returns the unit-length mean of the known word vectors, or nil if no
// word is known.
func (v *Vectors) mean(words []string) []float64 {
	sum := make([]float64, v.Dim)
	var n int
	for _, w := range words {
		vec, ok := v.Words[w]
		if !ok {
			continue
		}
		for i, x := range vec {
			sum[i] += float64(x)
		}
		n++
	}
	if n == 0 {
		return nil
	}

	var norm float64
	for _, x := range sum {
		norm += x * x
	}
	if norm == 0 {
		return nil
	}
	norm = math.Sqrt(norm)
	for i := range sum {
		sum[i] /= norm
	}
	return sum
}
