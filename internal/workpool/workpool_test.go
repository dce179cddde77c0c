package workpool

import (
	"sync/atomic"
	"testing"
)

func TestForVisitsEveryIndexOnce(t *testing.T) {
	const n = 1037
	hits := make([]int32, n)
	For(n, func(i int) { atomic.AddInt32(&hits[i], 1) })
	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d visited %d times", i, h)
		}
	}
	For(0, func(int) { t.Fatalf("called for n=0") })
}

func TestForWorkersSpreadsIndices(t *testing.T) {
	const n = 101
	hits := make([]int32, n)
	forWorkers(n, 4, func(i int) { atomic.AddInt32(&hits[i], 1) })
	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d visited %d times", i, h)
		}
	}
}

func TestWorkerPanicReachesCaller(t *testing.T) {
	defer func() {
		r := recover()
		if r != "index 7" {
			t.Fatalf("recovered %v, want the worker's panic value", r)
		}
	}()
	forWorkers(16, 4, func(i int) {
		if i == 7 {
			panic("index 7")
		}
	})
	t.Fatal("forWorkers returned normally")
}
