// bench_target is a local HTTP server for exercising the benchmark by hand.
// It serves a few endpoints with configurable artificial latency so progress
// lines and percentile output have something to show.
//
//	go run ./scripts/testservers/bench_target -port 8080 -latency 20ms -jitter 10ms
//	hurlbench -d 10s -p 8 request.hurl
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"
)

func main() {
	port := flag.Int("port", 8080, "Listening port")
	latency := flag.Duration("latency", 0, "Base delay added to every response")
	jitter := flag.Duration("jitter", 0, "Random extra delay in [0, jitter)")
	errorRate := flag.Float64("error-rate", 0, "Fraction of responses answered with 500")
	flag.Parse()

	if *errorRate < 0 || *errorRate > 1 {
		log.Fatalf("error-rate must be in [0, 1], got %g", *errorRate)
	}

	delay := func() {
		d := *latency
		if *jitter > 0 {
			d += time.Duration(rand.Int63n(int64(*jitter)))
		}
		if d > 0 {
			time.Sleep(d)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		delay()
		if *errorRate > 0 && rand.Float64() < *errorRate {
			http.Error(w, "injected failure", http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]any{"ok": true, "path": r.URL.Path, "method": r.Method})
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		delay()
		respondJSON(w, map[string]any{"headers": r.Header})
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("bench target listening on %s (latency=%s jitter=%s error-rate=%g)",
		addr, *latency, *jitter, *errorRate)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
