package benchmark

import (
	"crypto/rand"
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/service"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/pkg/token"
)

// ClientCounts defines the number of distinct client keys per run.
var ClientCounts = []int{100, 1000, 10000, 100000}

// SmallClientCounts for quick benchmarks.
var SmallClientCounts = []int{100, 1000}

// newClientKeys returns count distinct client keys. Most are IPv4 style
// keys, the rest stand in for ids from forwarded headers.
func newClientKeys(count int) []string {
	keys := make([]string, count)
	entropy := ulid.Monotonic(rand.Reader, 0)
	for i := range keys {
		if i%10 == 9 {
			id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
			keys[i] = "client-" + strings.ToLower(id.String())
			continue
		}
		keys[i] = fmt.Sprintf("10.%d.%d.%d", (i>>16)&0xff, (i>>8)&0xff, i&0xff)
	}
	return keys
}

// newCSRFService returns a service with a random 32 byte secret.
func newCSRFService(b *testing.B) *service.CSRFService {
	b.Helper()
	secret, err := token.GenerateBytes(32)
	if err != nil {
		b.Fatalf("GenerateBytes failed: %v", err)
	}
	svc, err := service.NewCSRFService(service.CSRFConfig{Secret: secret})
	if err != nil {
		b.Fatalf("NewCSRFService failed: %v", err)
	}
	return svc
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithClientCounts runs a benchmark function with various client counts.
func runWithClientCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("clients_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
