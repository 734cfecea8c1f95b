// Package matching maps arbitrary source column headers onto canonical fields.
package matching

import (
	"log/slog"
	"math"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/joseph-ayodele/hr-bulk/constants"
)

// DefaultThreshold is the score a match must exceed to be accepted.
const DefaultThreshold = 0.6

const maxHints = 3

// Strategy decides how competing claims on one source column are resolved.
type Strategy string

const (
	// StrategyExclusive ranks every (field, column) candidate by score and claims greedily,
	// so each column and each field is used at most once.
	StrategyExclusive Strategy = "exclusive"
	// StrategyIndependent evaluates each field on its own; two fields may claim one column.
	StrategyIndependent Strategy = "independent"
)

// ParseStrategy maps a config value to a Strategy, defaulting to exclusive.
func ParseStrategy(s string) Strategy {
	if Strategy(s) == StrategyIndependent {
		return StrategyIndependent
	}
	return StrategyExclusive
}

// Match is the accepted source column for one canonical field.
type Match struct {
	Column string  `json:"column"`
	Score  float64 `json:"score"`
}

// Confidence is Score as a percentage rounded to one decimal.
func (m Match) Confidence() float64 {
	return math.Round(m.Score*1000) / 10
}

// Mapping maps canonical fields to their matched source column.
type Mapping map[constants.Field]Match

// Column returns the source column mapped to f.
func (m Mapping) Column(f constants.Field) (string, bool) {
	match, ok := m[f]
	return match.Column, ok
}

// Has reports whether every field in fields is mapped.
func (m Mapping) Has(fields ...constants.Field) bool {
	for _, f := range fields {
		if _, ok := m[f]; !ok {
			return false
		}
	}
	return true
}

// Missing returns the fields from fields that are not mapped, in order.
func (m Mapping) Missing(fields []constants.Field) []constants.Field {
	var out []constants.Field
	for _, f := range fields {
		if _, ok := m[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// ConfidenceSummary buckets mapped fields by confidence.
type ConfidenceSummary struct {
	High   int `json:"high"`   // > 90%
	Medium int `json:"medium"` // 70% to 90%
	Low    int `json:"low"`    // < 70%
}

// Summary buckets the mapping's confidences.
func (m Mapping) Summary() ConfidenceSummary {
	var s ConfidenceSummary
	for _, match := range m {
		switch c := match.Confidence(); {
		case c > 90:
			s.High++
		case c >= 70:
			s.Medium++
		default:
			s.Low++
		}
	}
	return s
}

// Result is the outcome of matching one header row.
type Result struct {
	Mapping  Mapping             `json:"mapping"`
	Unmapped []string            `json:"unmapped"`
	Hints    map[string][]string `json:"hints,omitempty"`
}

// Matcher scores headers against a Dictionary.
type Matcher struct {
	dict      Dictionary
	strategy  Strategy
	threshold float64
	logger    *slog.Logger
}

type Option func(*Matcher)

func WithStrategy(s Strategy) Option {
	return func(m *Matcher) {
		if s != "" {
			m.strategy = s
		}
	}
}

func WithThreshold(t float64) Option {
	return func(m *Matcher) {
		if t > 0 && t < 1 {
			m.threshold = t
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMatcher returns a matcher over dict. A nil dict uses EmployeeDictionary.
func NewMatcher(dict Dictionary, opts ...Option) *Matcher {
	if len(dict) == 0 {
		dict = EmployeeDictionary()
	}
	m := &Matcher{
		dict:      dict,
		strategy:  StrategyExclusive,
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Dictionary returns the dictionary the matcher scores against.
func (m *Matcher) Dictionary() Dictionary { return m.dict }

type candidate struct {
	field    constants.Field
	fieldIdx int
	colIdx   int
	score    float64
}

// Match maps headers onto the dictionary's fields.
func (m *Matcher) Match(headers []string) Result {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = normalize(h)
	}

	var mapping Mapping
	if m.strategy == StrategyIndependent {
		mapping = m.independent(headers, norm)
	} else {
		mapping = m.exclusive(headers, norm)
	}

	used := make(map[string]struct{}, len(mapping))
	for _, match := range mapping {
		used[match.Column] = struct{}{}
	}
	res := Result{Mapping: mapping, Hints: map[string][]string{}}
	for _, h := range headers {
		if _, ok := used[h]; ok {
			continue
		}
		res.Unmapped = append(res.Unmapped, h)
		if hints := m.hints(h); len(hints) > 0 {
			res.Hints[h] = hints
		}
	}

	m.logger.Debug("matching.done",
		"strategy", m.strategy,
		"columns", len(headers),
		"mapped", len(mapping),
		"unmapped", len(res.Unmapped),
	)
	return res
}

// best returns the highest-scoring variant score of entry against one column.
// Strict comparison keeps the first-encountered variant on ties.
func best(entry Entry, col string) float64 {
	top := 0.0
	for _, v := range entry.Variants {
		if s := Ratio(normalize(v), col); s > top {
			top = s
		}
	}
	return top
}

func (m *Matcher) independent(headers, norm []string) Mapping {
	mapping := Mapping{}
	for _, entry := range m.dict {
		var top Match
		for i, col := range norm {
			if s := best(entry, col); s > top.Score {
				top = Match{Column: headers[i], Score: s}
			}
		}
		if top.Score > m.threshold {
			mapping[entry.Field] = top
		}
	}
	return mapping
}

func (m *Matcher) exclusive(headers, norm []string) Mapping {
	var cands []candidate
	for fi, entry := range m.dict {
		for ci, col := range norm {
			if s := best(entry, col); s > m.threshold {
				cands = append(cands, candidate{field: entry.Field, fieldIdx: fi, colIdx: ci, score: s})
			}
		}
	}
	// candidates were appended in (field, column) order, so a stable sort keeps that as the tie-break
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	mapping := Mapping{}
	claimed := make(map[int]struct{}, len(headers))
	for _, c := range cands {
		if _, done := mapping[c.field]; done {
			continue
		}
		if _, taken := claimed[c.colIdx]; taken {
			continue
		}
		mapping[c.field] = Match{Column: headers[c.colIdx], Score: c.score}
		claimed[c.colIdx] = struct{}{}
	}
	return mapping
}

// hints suggests canonical fields for an unmapped column by fuzzy subsequence search
// over the variant list, in both directions.
func (m *Matcher) hints(header string) []string {
	col := normalize(header)
	if col == "" {
		return nil
	}
	variants, fields := m.dict.Variants()

	ranks := fuzzy.RankFindNormalizedFold(col, variants)
	sort.Sort(ranks)

	var out []string
	seen := map[constants.Field]struct{}{}
	add := func(f constants.Field) {
		if _, ok := seen[f]; ok || len(out) >= maxHints {
			return
		}
		seen[f] = struct{}{}
		out = append(out, string(f))
	}
	for _, r := range ranks {
		add(fields[r.OriginalIndex])
	}
	for i, v := range variants {
		if len(v) > 2 && fuzzy.MatchNormalizedFold(v, col) {
			add(fields[i])
		}
	}
	return out
}
