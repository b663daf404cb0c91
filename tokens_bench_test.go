package goJobs

import (
	"context"
	"testing"
)

func newBenchmarkManager(b *testing.B, redisBacked bool) *TokenManager {
	b.Helper()

	builder := New().WithConfig(testConfig())
	if redisBacked {
		_, client := newTestRedis(b)
		builder = builder.WithRedis(client)
	}
	tm, err := builder.Build()
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	b.Cleanup(tm.Close)
	return tm
}

func BenchmarkIssueAccessAndRefresh(b *testing.B) {
	tm := newBenchmarkManager(b, false)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tm.IssueAccessAndRefresh(ctx, "user-1", RoleJobseeker); err != nil {
			b.Fatalf("issue failed: %v", err)
		}
	}
}

func BenchmarkVerifyMemory(b *testing.B) {
	benchmarkVerify(b, false)
}

func BenchmarkVerifyRedis(b *testing.B) {
	benchmarkVerify(b, true)
}

func benchmarkVerify(b *testing.B, redisBacked bool) {
	tm := newBenchmarkManager(b, redisBacked)
	ctx := context.Background()
	pair, err := tm.IssueAccessAndRefresh(ctx, "user-1", RoleJobseeker)
	if err != nil {
		b.Fatalf("issue failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tm.Verify(ctx, pair.AccessToken); err != nil {
			b.Fatalf("verify failed: %v", err)
		}
	}
}

func BenchmarkVerifyParallel(b *testing.B) {
	tm := newBenchmarkManager(b, false)
	ctx := context.Background()
	pair, err := tm.IssueAccessAndRefresh(ctx, "user-1", RoleJobseeker)
	if err != nil {
		b.Fatalf("issue failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := tm.Verify(ctx, pair.AccessToken); err != nil {
				b.Errorf("verify failed: %v", err)
				return
			}
		}
	})
}

func BenchmarkRevokeRemainingRedis(b *testing.B) {
	tm := newBenchmarkManager(b, true)
	ctx := context.Background()

	tokens := make([]string, b.N)
	for i := range tokens {
		pair, err := tm.IssueAccessAndRefresh(ctx, "user-1", RoleJobseeker)
		if err != nil {
			b.Fatalf("issue failed: %v", err)
		}
		tokens[i] = pair.AccessToken
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := tm.RevokeRemaining(ctx, tokens[i]); err != nil {
			b.Fatalf("revoke failed: %v", err)
		}
	}
}
