//go:build ignore
// +build ignore

// Package main provides a manual concurrency stress test for the Bookstore API.
//
// Usage:
//
//	TOKEN=<access_token> BOOK_ID=<uuid> go run ./scripts/concurrency_test.go
//
// Optional:
//
//	CONCURRENCY=<n>   number of simultaneous requests (default 20)
//	SERVER_ADDR=<url> API base URL (default http://localhost:8080)
//
// What it does:
//  1. Fires N goroutines all attempting to purchase the same book for the same
//     user simultaneously.
//  2. Tallies how many got 201 Created vs 409 Conflict.
//  3. Exactly one 201 means the (user, book) unique index held under the race;
//     anything else is a bug.
//
// Prerequisites:
//   - Server must be running and the book must exist.
//   - TOKEN must be a valid access token for a user who has NOT purchased the
//     book yet (delete the purchase and library rows between runs).

package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

const defaultServerAddr = "http://localhost:8080"

type purchaseResult struct {
	StatusCode int
	Body       string
	Err        error
}

func main() {
	serverAddr := os.Getenv("SERVER_ADDR")
	if serverAddr == "" {
		serverAddr = defaultServerAddr
	}

	token := os.Getenv("TOKEN")
	bookID := os.Getenv("BOOK_ID")
	if token == "" || bookID == "" {
		log.Fatal("Usage: TOKEN=<access_token> BOOK_ID=<uuid> go run ./scripts/concurrency_test.go")
	}

	concurrency := 20
	if raw := os.Getenv("CONCURRENCY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 2 {
			log.Fatalf("CONCURRENCY must be an integer >= 2, got %q", raw)
		}
		concurrency = n
	}

	fmt.Printf("=== Purchase Concurrency Test ===\n")
	fmt.Printf("Server   : %s\n", serverAddr)
	fmt.Printf("Book     : %s\n", bookID)
	fmt.Printf("Requests : %d\n\n", concurrency)

	results := make([]purchaseResult, concurrency)
	var wg sync.WaitGroup

	// Fire all goroutines simultaneously using a barrier.
	start := make(chan struct{})

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start // wait for the barrier
			results[idx] = attemptPurchase(serverAddr, token, bookID)
		}(i)
	}

	fmt.Println("Firing all requests simultaneously...")
	close(start)

	wg.Wait()
	fmt.Println("All requests completed.")
	fmt.Println()

	var created, conflicts, failures int
	for i, r := range results {
		switch {
		case r.Err != nil:
			failures++
			fmt.Printf("  [ERR ] req=%-3d err=%v\n", i, r.Err)
		case r.StatusCode == http.StatusCreated:
			created++
			fmt.Printf("  [CRTD] req=%-3d status=%d\n", i, r.StatusCode)
		case r.StatusCode == http.StatusConflict:
			conflicts++
			fmt.Printf("  [CONF] req=%-3d status=%d\n", i, r.StatusCode)
		default:
			failures++
			fmt.Printf("  [FAIL] req=%-3d status=%d body=%s\n", i, r.StatusCode, r.Body)
		}
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Created   : %d\n", created)
	fmt.Printf("Conflicts : %d\n", conflicts)
	fmt.Printf("Failures  : %d\n", failures)
	fmt.Printf("Total     : %d\n\n", concurrency)

	// Verify invariant: the (user_id, book_id) unique index on purchases means
	// at most one request can land the insert; every other request must see a
	// conflict, either from the fast-path check or from the index itself.
	fmt.Println("--- Invariant Check ---")
	if created == 1 && failures == 0 {
		fmt.Println("PASS: exactly one purchase was created under the race.")
		return
	}
	fmt.Printf("FAIL: expected exactly 1 created and 0 failures, got %d created / %d failures.\n", created, failures)
	os.Exit(1)
}

// attemptPurchase sends POST /purchases for the given book with the bearer token.
func attemptPurchase(serverAddr, token, bookID string) purchaseResult {
	body := fmt.Sprintf(`{"book_id":"%s","price_cents":0}`, bookID)

	req, err := http.NewRequest(http.MethodPost, serverAddr+"/purchases", bytes.NewBufferString(body))
	if err != nil {
		return purchaseResult{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return purchaseResult{Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return purchaseResult{StatusCode: resp.StatusCode, Body: string(raw)}
}
