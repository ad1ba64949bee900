package marq

import (
	"os"
	"testing"
)

func TestScanAllocations(t *testing.T) {
	src, err := os.ReadFile("testdata/inline.mq")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	n := len(Scan(src))
	allocs := testing.AllocsPerRun(100, func() {
		_ = Scan(src)
	})
	if limit := float64(4*n + 32); allocs > limit {
		t.Fatalf("too many allocations per Scan: got %.2f for %d tokens", allocs, n)
	}
}
