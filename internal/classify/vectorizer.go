package classify

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Vectorizer turns clause text into the term-frequency vector the exported
// classifiers were trained on. The vocabulary file lists one term per line;
// line number = feature index.
type Vectorizer struct {
	vocab map[string]int
	dims  int
}

// NewVectorizer loads the vocabulary at path.
func NewVectorizer(path string) (*Vectorizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int)
	scanner := bufio.NewScanner(f)
	i := 0
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term == "" {
			continue
		}
		vocab[term] = i
		i++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}
	return &Vectorizer{vocab: vocab, dims: i}, nil
}

// Dimensions returns the feature-vector length.
func (v *Vectorizer) Dimensions() int {
	return v.dims
}

// Vectorize returns the term-frequency vector for text.
func (v *Vectorizer) Vectorize(text string) []float32 {
	vec := make([]float32, v.dims)
	for term, count := range TermCounts(text) {
		if idx, ok := v.vocab[term]; ok {
			vec[idx] = float32(count)
		}
	}
	return vec
}

// TermCounts tokenizes text into lowercase terms and counts occurrences.
// Tokens are maximal runs of letters and digits.
func TermCounts(text string) map[string]int {
	counts := make(map[string]int)
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			counts[b.String()]++
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return counts
}
