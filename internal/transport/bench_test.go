package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func BenchmarkClientProbe_Success(b *testing.B) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	client := NewClient(10, 0, 0, 10, false)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		client.Probe(ctx, server.URL)
	}
}

func BenchmarkRateLimiter_GetOrCreate(b *testing.B) {
	client := NewClient(10, 10, 0, 10, false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		client.getRateLimiter("bench-host.com")
	}
}
