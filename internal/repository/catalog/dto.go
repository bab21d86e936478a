package catalog

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"
	"strings"

	domcat "github.com/kailas-cloud/tastefeed/internal/domain/catalog"
	"github.com/kailas-cloud/tastefeed/internal/domain/search/filter"
	"github.com/kailas-cloud/tastefeed/internal/domain/vector"
)

// FieldNumericNames is the hash field listing which metadata fields are
// numeric. Tags and numerics share one flat hash, and a tag value like
// "2024" is indistinguishable from a number by shape, so the writer records
// the split explicitly.
const FieldNumericNames = "__numerics"

// buildHashFields converts a domain Item into a flat map[string]string for HSET.
// Labels are joined into the single TAG field the index splits back apart.
func buildHashFields(item domcat.Item) map[string]string {
	m := make(map[string]string, 4+len(item.Tags())+len(item.Numerics()))
	m["__vector"] = vectorToBytes(item.Vector())
	if item.Category() != "" {
		m[filter.FieldCategory] = item.Category()
	}
	if len(item.Labels()) > 0 {
		m[filter.FieldLabels] = strings.Join(item.Labels(), filter.LabelSeparator)
	}
	for k, v := range item.Tags() {
		m[k] = v
	}
	if len(item.Numerics()) > 0 {
		names := make([]string, 0, len(item.Numerics()))
		for k, v := range item.Numerics() {
			m[k] = strconv.FormatFloat(v, 'f', -1, 64)
			names = append(names, k)
		}
		sort.Strings(names)
		m[FieldNumericNames] = strings.Join(names, ",")
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Item. Fields
// named by the FieldNumericNames marker become numerics, everything else a tag.
func parseHashFields(id string, m map[string]string) domcat.Item {
	var category string
	var labels []string
	var vec vector.Vector
	tags := make(map[string]string)
	numerics := make(map[string]float64)
	numericNames := splitNumericNames(m[FieldNumericNames])

	for k, v := range m {
		switch k {
		case "__vector":
			vec = bytesToVector(v)
		case FieldNumericNames:
		case filter.FieldCategory:
			category = v
		case filter.FieldLabels:
			if v != "" {
				labels = strings.Split(v, filter.LabelSeparator)
			}
		default:
			if numericNames[k] {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					numerics[k] = f
				}
			} else {
				tags[k] = v
			}
		}
	}

	return domcat.Reconstruct(id, category, tags, numerics, labels, vec)
}

func splitNumericNames(s string) map[string]bool {
	if s == "" {
		return nil
	}
	names := make(map[string]bool)
	for _, n := range strings.Split(s, ",") {
		names[n] = true
	}
	return names
}

// vectorToBytes serializes a vector to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v vector.Vector) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to a vector.
func bytesToVector(s string) vector.Vector {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make(vector.Vector, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
