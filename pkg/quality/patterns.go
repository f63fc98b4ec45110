package quality

import (
	"encoding/binary"
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/tabulon-ai/tabulon-engine/pkg/models"
)

// patternSpec pairs a pattern name with its matcher. The slice order is
// the precedence order; the first pattern whose match fraction clears
// the threshold wins.
type patternSpec struct {
	name  string
	match func(string) bool
}

var (
	emailRe    = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)
	urlRe      = regexp.MustCompile(`^https?://[^\s]+$`)
	phoneRe    = regexp.MustCompile(`^\+?[0-9][0-9\s().-]{6,}$`)
	currencyRe = regexp.MustCompile(`^[$€£¥]\s?-?[\d,]+(\.\d+)?$|^-?[\d,]+(\.\d+)?\s?[$€£¥]$`)
	geoRe      = regexp.MustCompile(`^-?\d{1,3}\.\d+,\s*-?\d{1,3}\.\d+$`)
	datelikeRe = regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}([ T].*)?$|^\d{1,2}[-/]\d{1,2}[-/]\d{4}$`)
)

var patternSpecs = []patternSpec{
	{models.PatternEmail, emailRe.MatchString},
	{models.PatternPhone, matchPhone},
	{models.PatternURL, urlRe.MatchString},
	{models.PatternJSON, matchJSON},
	{models.PatternDate, datelikeRe.MatchString},
	{models.PatternCurrency, currencyRe.MatchString},
	{models.PatternGeolocation, geoRe.MatchString},
}

// matchPhone excludes date-shaped digit strings, which would otherwise
// satisfy the phone charset and shadow the DATE pattern.
func matchPhone(s string) bool {
	return phoneRe.MatchString(s) && !datelikeRe.MatchString(s)
}

func matchJSON(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return false
	}
	if s[0] != '{' && s[0] != '[' {
		return false
	}
	return json.Valid([]byte(s))
}

// patternCache memoizes detection results keyed by a 64-bit digest of the
// sampled-values tuple. Detection is a pure function of the sample, so
// identical samples (repeat profiling of the same file, duplicated
// columns) skip the regex pass entirely. Entries are evicted in insertion
// order once the cache is full.
type patternCache struct {
	mu      sync.Mutex
	max     int
	results map[uint64]string
	order   []uint64
}

func newPatternCache(max int) *patternCache {
	if max < 1 {
		max = 1
	}
	return &patternCache{
		max:     max,
		results: make(map[uint64]string, max),
	}
}

// sampleDigest hashes the sample tuple. Values are length-prefixed so
// ["ab","c"] and ["a","bc"] digest differently.
func sampleDigest(sample []string) uint64 {
	d := xxhash.New()
	var lenBuf [8]byte
	for _, v := range sample {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(v)))
		_, _ = d.Write(lenBuf[:])
		_, _ = d.WriteString(v)
	}
	return d.Sum64()
}

func (c *patternCache) get(key uint64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.results[key]
	return v, ok
}

func (c *patternCache) put(key uint64, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.results[key]; ok {
		return
	}
	if len(c.results) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.results, oldest)
	}
	c.results[key] = value
	c.order = append(c.order, key)
}

func (c *patternCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// detectPattern votes each pattern over the sample and returns the first
// one whose match fraction exceeds threshold, or "" when none does.
func detectPattern(cache *patternCache, sample []string, threshold float64) string {
	if len(sample) == 0 {
		return ""
	}

	key := sampleDigest(sample)
	if result, ok := cache.get(key); ok {
		return result
	}

	counts := make([]int, len(patternSpecs))
	for _, v := range sample {
		for i, spec := range patternSpecs {
			if spec.match(v) {
				counts[i]++
			}
		}
	}

	result := ""
	for i, spec := range patternSpecs {
		if float64(counts[i])/float64(len(sample)) > threshold {
			result = spec.name
			break
		}
	}
	cache.put(key, result)
	return result
}
