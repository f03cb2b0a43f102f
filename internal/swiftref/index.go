/**
 * @description
 * This package holds the SWIFT/BIC reference index: a read-only, in-memory
 * set of recognized BIC codes loaded once at process start and shared by all
 * verification requests. Lookups are exact matches on the case-normalized
 * code; there is no partial-match scoring.
 *
 * @notes
 * - The index never mutates after construction, so concurrent reads need no
 *   synchronization.
 * - Callers that fail to load the dataset are expected to fall back to
 *   swiftref.Empty(): every lookup then misses, which keeps the service up
 *   at the cost of rejecting all SWIFT checks until the dataset returns.
 *   That availability-over-correctness tradeoff is intentional.
 */

package swiftref

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Record is one entry of the reference dataset. The dataset carries many more
// fields per institution; only the BIC matters here.
type Record struct {
	BIC string `json:"bic"`
}

// Index answers "is this BIC recognized?" in O(1) average time.
type Index struct {
	codes map[string]struct{}
}

// Normalize strips all whitespace from a BIC code and upper-cases it. Both
// the loader and every lookup go through this, so "absa zaxxx" and
// "ABSAZAXXX" resolve identically.
func Normalize(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, code)
}

// New builds an index from dataset records. Records with a blank BIC are skipped.
func New(records []Record) *Index {
	codes := make(map[string]struct{}, len(records))
	for _, rec := range records {
		normalized := Normalize(rec.BIC)
		if normalized == "" {
			continue
		}
		codes[normalized] = struct{}{}
	}
	return &Index{codes: codes}
}

// Empty returns an index that recognizes no codes.
func Empty() *Index {
	return &Index{codes: map[string]struct{}{}}
}

// LoadFile reads a JSON dataset file of the shape [{"bic": "...", ...}, ...].
func LoadFile(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read swift dataset: %w", err)
	}
	return Parse(raw)
}

// Parse decodes raw JSON dataset bytes into an index.
func Parse(raw []byte) (*Index, error) {
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode swift dataset: %w", err)
	}
	return New(records), nil
}

// Contains reports whether the normalized form of code is in the dataset.
// An empty code is never contained; callers must reject it before lookup.
func (i *Index) Contains(code string) bool {
	if i == nil {
		return false
	}
	normalized := Normalize(code)
	if normalized == "" {
		return false
	}
	_, ok := i.codes[normalized]
	return ok
}

// Len reports how many distinct codes the index holds.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.codes)
}
