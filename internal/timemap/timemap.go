// Package timemap provides an ordered mapping from simulated time to
// sampled values, with binary-searched lookups. Keys are monotonically
// maintained regardless of insertion order; inserting at an existing
// time replaces the previous sample.
package timemap

import "sort"

type sample[V any] struct {
	t float64
	v V
}

type TimeMap[V any] struct {
	samples []sample[V]
}

func New[V any]() *TimeMap[V] {
	return &TimeMap[V]{}
}

func (m *TimeMap[V]) Len() int      { return len(m.samples) }
func (m *TimeMap[V]) IsEmpty() bool { return len(m.samples) == 0 }

// search returns the index of the first sample with time >= t.
func (m *TimeMap[V]) search(t float64) int {
	return sort.Search(len(m.samples), func(i int) bool {
		return m.samples[i].t >= t
	})
}

func (m *TimeMap[V]) Insert(t float64, v V) {
	i := m.search(t)
	if i < len(m.samples) && m.samples[i].t == t {
		m.samples[i].v = v
		return
	}
	m.samples = append(m.samples, sample[V]{})
	copy(m.samples[i+1:], m.samples[i:])
	m.samples[i] = sample[V]{t: t, v: v}
}

// At returns the sample stored at exactly time t.
func (m *TimeMap[V]) At(t float64) (V, bool) {
	i := m.search(t)
	if i < len(m.samples) && m.samples[i].t == t {
		return m.samples[i].v, true
	}
	var zero V
	return zero, false
}

// AtOrBefore returns the latest sample with time <= t.
func (m *TimeMap[V]) AtOrBefore(t float64) (float64, V, bool) {
	i := m.search(t)
	if i < len(m.samples) && m.samples[i].t == t {
		return m.samples[i].t, m.samples[i].v, true
	}
	if i == 0 {
		var zero V
		return 0, zero, false
	}
	return m.samples[i-1].t, m.samples[i-1].v, true
}

// Before returns the latest sample with time strictly < t.
func (m *TimeMap[V]) Before(t float64) (float64, V, bool) {
	i := m.search(t)
	if i == 0 {
		var zero V
		return 0, zero, false
	}
	return m.samples[i-1].t, m.samples[i-1].v, true
}

// IndexAfter returns the index of the first sample with time strictly > t.
func (m *TimeMap[V]) IndexAfter(t float64) int {
	return sort.Search(len(m.samples), func(i int) bool {
		return m.samples[i].t > t
	})
}

// Get returns the sample at index i in time order.
func (m *TimeMap[V]) Get(i int) (float64, V, bool) {
	if i < 0 || i >= len(m.samples) {
		var zero V
		return 0, zero, false
	}
	return m.samples[i].t, m.samples[i].v, true
}

func (m *TimeMap[V]) First() (float64, V, bool) { return m.Get(0) }
func (m *TimeMap[V]) Last() (float64, V, bool)  { return m.Get(len(m.samples) - 1) }

func (m *TimeMap[V]) Times() []float64 {
	times := make([]float64, len(m.samples))
	for i, s := range m.samples {
		times[i] = s.t
	}
	return times
}

// Range returns a new map holding the samples with start <= time <= end.
func (m *TimeMap[V]) Range(start, end float64) *TimeMap[V] {
	lo := m.search(start)
	hi := m.IndexAfter(end)
	out := &TimeMap[V]{samples: make([]sample[V], hi-lo)}
	copy(out.samples, m.samples[lo:hi])
	return out
}

// TruncateAfter removes all samples with time strictly > t and returns
// how many were removed.
func (m *TimeMap[V]) TruncateAfter(t float64) int {
	i := m.IndexAfter(t)
	removed := len(m.samples) - i
	m.samples = m.samples[:i]
	return removed
}

// Each calls fn for every sample in time order until fn returns false.
func (m *TimeMap[V]) Each(fn func(t float64, v V) bool) {
	for _, s := range m.samples {
		if !fn(s.t, s.v) {
			return
		}
	}
}

func (m *TimeMap[V]) Clone() *TimeMap[V] {
	out := &TimeMap[V]{samples: make([]sample[V], len(m.samples))}
	copy(out.samples, m.samples)
	return out
}
