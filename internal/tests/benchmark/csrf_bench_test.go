package benchmark

import (
	"testing"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/pkg/token"
)

// BenchmarkNonceGenerate benchmarks the random part of a token.
func BenchmarkNonceGenerate(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := token.GenerateHex(16); err != nil {
			b.Fatalf("GenerateHex failed: %v", err)
		}
	}
}

// BenchmarkSign benchmarks the HMAC over a token payload.
func BenchmarkSign(b *testing.B) {
	secret, _ := token.GenerateBytes(32)
	payload := "1718000000000:0123456789abcdef0123456789abcdef"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		token.Sign(secret, payload)
	}
}

// BenchmarkCSRFIssue benchmarks issuing a token.
func BenchmarkCSRFIssue(b *testing.B) {
	svc := newCSRFService(b)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Issue(); err != nil {
			b.Fatalf("Issue failed: %v", err)
		}
	}
}

// BenchmarkCSRFValidate benchmarks validating a good token.
func BenchmarkCSRFValidate(b *testing.B) {
	svc := newCSRFService(b)
	issued, err := svc.Issue()
	if err != nil {
		b.Fatalf("Issue failed: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if !svc.Validate(issued.Token) {
			b.Fatal("token rejected")
		}
	}
}

// BenchmarkCSRFValidate_Forged benchmarks rejecting a token signed with
// another secret.
func BenchmarkCSRFValidate_Forged(b *testing.B) {
	svc := newCSRFService(b)
	forged, err := newCSRFService(b).Issue()
	if err != nil {
		b.Fatalf("Issue failed: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if svc.Validate(forged.Token) {
			b.Fatal("forged token accepted")
		}
	}
}

// BenchmarkCSRFValidate_Parallel benchmarks concurrent validation.
func BenchmarkCSRFValidate_Parallel(b *testing.B) {
	svc := newCSRFService(b)
	issued, _ := svc.Issue()

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			svc.Validate(issued.Token)
		}
	})
}
