package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Hammers a running server with concurrent commands from a user that is not a
// member of the org. Requests inside the window reach the authorization step
// and come back 403; requests past the limit come back 429. The split proves
// the limiter runs first and that refused traffic never costs a completion.
const (
	serverURL     = "http://localhost:8080/api/command"
	orgID         = "stress-org"
	userID        = "stress-nonmember"
	totalRequests = 50
	rateLimit     = 30 // must match RATE_LIMIT on the server
)

func main() {
	client := &http.Client{Timeout: 10 * time.Second}

	var reached atomic.Int32
	var limited atomic.Int32
	var other atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body := fmt.Sprintf(`{"org_id":%q,"user_id":%q,"message":"set rice to 5"}`, orgID, userID)
			resp, err := client.Post(serverURL, "application/json", strings.NewReader(body))
			if err != nil {
				other.Add(1)
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusForbidden:
				reached.Add(1)
			case http.StatusTooManyRequests:
				limited.Add(1)
			default:
				other.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== RATE LIMIT STRESS RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Window Limit:     %d\n", rateLimit)
	fmt.Printf("Reached Auth:     %d\n", reached.Load())
	fmt.Printf("Rate Limited:     %d\n", limited.Load())
	fmt.Printf("Other:            %d\n", other.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("===============================================")

	if reached.Load() == rateLimit && limited.Load() == totalRequests-rateLimit {
		fmt.Printf("PASS: Exactly %d requests passed the limiter, %d were refused\n",
			rateLimit, totalRequests-rateLimit)
	} else {
		fmt.Printf("FAIL: Expected %d/%d split, got %d/%d\n",
			rateLimit, totalRequests-rateLimit, reached.Load(), limited.Load())
	}
}
