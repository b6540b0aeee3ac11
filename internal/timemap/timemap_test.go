package timemap

import "testing"

func build(times ...float64) *TimeMap[int] {
	m := New[int]()
	for i, t := range times {
		m.Insert(t, i)
	}
	return m
}

func TestInsertKeepsOrder(t *testing.T) {
	m := build(5, 1, 3, 2, 4)
	want := []float64{1, 2, 3, 4, 5}
	got := m.Times()
	if len(got) != len(want) {
		t.Fatalf("Times = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Times[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInsertReplacesEqualKey(t *testing.T) {
	m := New[int]()
	m.Insert(2, 10)
	m.Insert(2, 20)
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	v, ok := m.At(2)
	if !ok || v != 20 {
		t.Errorf("At(2) = %v, %v; want 20, true", v, ok)
	}
}

func TestLookups(t *testing.T) {
	m := build(1, 3, 5)

	if _, ok := m.At(2); ok {
		t.Error("At(2) should miss")
	}

	tt, v, ok := m.AtOrBefore(4)
	if !ok || tt != 3 || v != 1 {
		t.Errorf("AtOrBefore(4) = %v, %v, %v", tt, v, ok)
	}
	tt, v, ok = m.AtOrBefore(3)
	if !ok || tt != 3 {
		t.Errorf("AtOrBefore(3) = %v, %v, %v", tt, v, ok)
	}
	if _, _, ok := m.AtOrBefore(0.5); ok {
		t.Error("AtOrBefore before first should miss")
	}

	tt, _, ok = m.Before(3)
	if !ok || tt != 1 {
		t.Errorf("Before(3) = %v, want 1", tt)
	}

	if ft, _, _ := m.First(); ft != 1 {
		t.Errorf("First = %v", ft)
	}
	if lt, _, _ := m.Last(); lt != 5 {
		t.Errorf("Last = %v", lt)
	}
}

func TestRange(t *testing.T) {
	m := build(1, 2, 3, 4, 5)
	sub := m.Range(2, 4)
	if sub.Len() != 3 {
		t.Fatalf("Range len = %d, want 3", sub.Len())
	}
	if ft, _, _ := sub.First(); ft != 2 {
		t.Errorf("Range first = %v", ft)
	}
	if lt, _, _ := sub.Last(); lt != 4 {
		t.Errorf("Range last = %v", lt)
	}
}

func TestTruncateAfter(t *testing.T) {
	m := build(1, 2, 3, 4, 5)
	removed := m.TruncateAfter(3)
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if m.Len() != 3 {
		t.Errorf("Len = %d, want 3", m.Len())
	}
	if lt, _, _ := m.Last(); lt != 3 {
		t.Errorf("Last = %v, want 3", lt)
	}
}

func TestEachStopsEarly(t *testing.T) {
	m := build(1, 2, 3, 4)
	count := 0
	m.Each(func(tt float64, v int) bool {
		count++
		return tt < 2
	})
	if count != 2 {
		t.Errorf("visited %d samples, want 2", count)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := build(1, 2)
	c := m.Clone()
	c.Insert(3, 99)
	if m.Len() != 2 {
		t.Errorf("original mutated, Len = %d", m.Len())
	}
	if c.Len() != 3 {
		t.Errorf("clone Len = %d, want 3", c.Len())
	}
}
