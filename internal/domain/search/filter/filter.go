// Package filter defines the exact metadata predicate applied to search
// candidates. The vector store pre-filters natively where it can; the
// retrieval layer re-checks every hit against this predicate, so a result
// list never contains a false positive regardless of backend fidelity.
package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Well-known metadata field names shared by the index schema, the query
// builder and client-side matching.
const (
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
	FieldLabels      = "tags"
	FieldPrice       = "price"
)

// LabelSeparator joins label sets into a single TAG hash field.
const LabelSeparator = ","

// MaxLabels bounds the tag-membership clause.
const MaxLabels = 16

// Range is an inclusive numeric range; either bound may be open.
type Range struct {
	min *float64
	max *float64
}

// NewRange validates and creates a Range.
func NewRange(min, max *float64) (Range, error) {
	if min == nil && max == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if min != nil && max != nil && *min > *max {
		return Range{}, fmt.Errorf("range min %g exceeds max %g", *min, *max)
	}
	return Range{min: min, max: max}, nil
}

// Min returns the inclusive lower bound.
func (r Range) Min() *float64 { return r.min }

// Max returns the inclusive upper bound.
func (r Range) Max() *float64 { return r.max }

// Contains reports whether v falls inside the range.
func (r Range) Contains(v float64) bool {
	if r.min != nil && v < *r.min {
		return false
	}
	if r.max != nil && v > *r.max {
		return false
	}
	return true
}

// Filter is the structured metadata predicate: category/subcategory equality,
// all-of label membership and inclusive numeric ranges.
type Filter struct {
	category    string
	subcategory string
	labels      []string
	ranges      map[string]Range
}

// New validates and creates a Filter.
func New(category, subcategory string, labels []string, ranges map[string]Range) (Filter, error) {
	if len(labels) > MaxLabels {
		return Filter{}, fmt.Errorf("too many label conditions (max %d)", MaxLabels)
	}
	for _, l := range labels {
		if l == "" {
			return Filter{}, fmt.Errorf("label condition must not be empty")
		}
		if strings.Contains(l, LabelSeparator) {
			return Filter{}, fmt.Errorf("label %q must not contain %q", l, LabelSeparator)
		}
	}
	for k := range ranges {
		if k == "" {
			return Filter{}, fmt.Errorf("range field name is required")
		}
	}
	cleaned := append([]string(nil), labels...)
	sort.Strings(cleaned)
	return Filter{category: category, subcategory: subcategory, labels: cleaned, ranges: ranges}, nil
}

// Category returns the exact-match category, empty when unconstrained.
func (f Filter) Category() string { return f.category }

// Subcategory returns the exact-match subcategory, empty when unconstrained.
func (f Filter) Subcategory() string { return f.subcategory }

// Labels returns the labels that must all be present on a matching item.
func (f Filter) Labels() []string { return f.labels }

// Ranges returns the numeric range conditions keyed by field name.
func (f Filter) Ranges() map[string]Range { return f.ranges }

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return f.category == "" && f.subcategory == "" && len(f.labels) == 0 && len(f.ranges) == 0
}

// Matches applies the predicate exactly against a hit's hydrated metadata.
// Label membership is checked against the comma-joined FieldLabels tag. An
// item missing a ranged numeric field does not match: a price cap excludes
// items with no price.
func (f Filter) Matches(tags map[string]string, numerics map[string]float64) bool {
	if f.category != "" && tags[FieldCategory] != f.category {
		return false
	}
	if f.subcategory != "" && tags[FieldSubcategory] != f.subcategory {
		return false
	}
	if len(f.labels) > 0 {
		have := make(map[string]bool)
		for _, l := range strings.Split(tags[FieldLabels], LabelSeparator) {
			have[strings.TrimSpace(l)] = true
		}
		for _, want := range f.labels {
			if !have[want] {
				return false
			}
		}
	}
	for field, r := range f.ranges {
		v, ok := numerics[field]
		if !ok || !r.Contains(v) {
			return false
		}
	}
	return true
}

// Canonical renders a deterministic textual form of the filter, suitable for
// cache keys: identical predicates always render identically.
func (f Filter) Canonical() string {
	var parts []string
	if f.category != "" {
		parts = append(parts, FieldCategory+"="+f.category)
	}
	if f.subcategory != "" {
		parts = append(parts, FieldSubcategory+"="+f.subcategory)
	}
	if len(f.labels) > 0 {
		parts = append(parts, FieldLabels+"="+strings.Join(f.labels, LabelSeparator))
	}
	fields := make([]string, 0, len(f.ranges))
	for k := range f.ranges {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	for _, k := range fields {
		r := f.ranges[k]
		parts = append(parts, k+"="+boundString(r.min)+".."+boundString(r.max))
	}
	return strings.Join(parts, "&")
}

func boundString(b *float64) string {
	if b == nil {
		return ""
	}
	return strconv.FormatFloat(*b, 'g', -1, 64)
}
