// Package stats implements the Column Statistician from spec §4.5:
// per-column accumulation of counts, a length histogram, and a numeric
// scale histogram over each column's observed raw field values.
package stats

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	dateRe = regexp.MustCompile(`^\d{2,4}-\d{1,2}-\d{1,2}$`)
	tsRe   = regexp.MustCompile(`^\d{2,4}-\d{1,2}-\d{1,2} \d{1,2}:\d{2}:\d{2}$`)
)

// Histogram accumulates a running mean and population standard deviation
// over a stream of integers via Welford's method, plus min/max.
type Histogram struct {
	count int
	mean  float64
	m2    float64
	min   int
	max   int
}

func (h *Histogram) Observe(v int) {
	h.count++
	if h.count == 1 {
		h.min, h.max = v, v
	} else {
		if v < h.min {
			h.min = v
		}
		if v > h.max {
			h.max = v
		}
	}
	delta := float64(v) - h.mean
	h.mean += delta / float64(h.count)
	delta2 := float64(v) - h.mean
	h.m2 += delta * delta2
}

func (h *Histogram) Count() int { return h.count }
func (h *Histogram) Min() int   { return h.min }
func (h *Histogram) Max() int   { return h.max }
func (h *Histogram) Avg() float64 {
	return h.mean
}
func (h *Histogram) StdDev() float64 {
	if h.count == 0 {
		return 0
	}
	return math.Sqrt(h.m2 / float64(h.count))
}

// Column accumulates the per-column observations spec §4.5 defines.
type Column struct {
	Name string

	Count     int
	NullCount int
	NumCount  int
	DtCount   int
	TsCount   int

	Length Histogram
	Scale  Histogram

	NumMin float64
	NumMax float64
	haveNum bool
}

// Observe records one tokenized field value against the column.
func (c *Column) Observe(v string) {
	c.Count++

	isNull := len(v) == 0 || v == `""` || v == "NULL"
	if isNull {
		c.NullCount++
	}

	c.Length.Observe(len([]byte(v)))

	if n, scale, ok := parseNumeric(v); ok {
		c.NumCount++
		c.Scale.Observe(scale)
		if !c.haveNum {
			c.NumMin, c.NumMax = n, n
			c.haveNum = true
		} else {
			if n < c.NumMin {
				c.NumMin = n
			}
			if n > c.NumMax {
				c.NumMax = n
			}
		}
	}

	if !isNull {
		if dateRe.MatchString(v) {
			c.DtCount++
		}
		if tsRe.MatchString(v) {
			c.TsCount++
		}
	}
}

// NonNull is count - nullCount, the base every §4.6 condition is measured
// against.
func (c *Column) NonNull() int { return c.Count - c.NullCount }

// NullPct is nullCount / count.
func (c *Column) NullPct() float64 {
	if c.Count == 0 {
		return 0
	}
	return float64(c.NullCount) / float64(c.Count)
}

// parseNumeric reports whether v is a signed decimal number (integer or
// fixed-point, optional exponent) per spec §4.5, returning its float value
// and the count of digits after '.'.
func parseNumeric(v string) (value float64, scale int, ok bool) {
	t := strings.TrimSpace(v)
	if t == "" {
		return 0, 0, false
	}
	// strconv.ParseFloat also accepts "NaN", "Inf"/"Infinity" and hex
	// floats, none of which is a signed decimal number.
	if strings.IndexFunc(t, func(r rune) bool {
		return !strings.ContainsRune("0123456789+-.eE", r)
	}) >= 0 {
		return 0, 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, 0, false
	}
	mantissa := t
	if i := strings.IndexAny(mantissa, "eE"); i >= 0 {
		mantissa = mantissa[:i]
	}
	if dot := strings.IndexByte(mantissa, '.'); dot >= 0 {
		scale = len(mantissa) - dot - 1
	}
	return f, scale, true
}

// Margin implements spec §4.6's margin(x) helper over either the length or
// scale histogram: max + floor(3*stdDev) when stdDev exceeds 0.34, else
// max + 1.
func Margin(h *Histogram) int {
	sd := h.StdDev()
	if sd > 0.34 {
		return h.Max() + int(math.Floor(3*sd))
	}
	return h.Max() + 1
}
