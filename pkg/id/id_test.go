package id

import "testing"

func TestNextMonotonic(t *testing.T) {
	g := NewGenerator()
	prev := g.Next().String()
	for i := 0; i < 1000; i++ {
		cur := g.Next().String()
		if cur <= prev {
			t.Fatalf("ids not increasing: %s then %s", prev, cur)
		}
		prev = cur
	}
}

func TestClockBackwards(t *testing.T) {
	g := NewGenerator()
	orig := NowMs
	defer func() { NowMs = orig }()

	NowMs = func() int64 { return 2000 }
	a := g.Next()
	NowMs = func() int64 { return 1000 }
	b := g.Next()
	if b.String() <= a.String() {
		t.Fatalf("id should still increase on clock regression: %s then %s", a, b)
	}
}
