// Command loadtest fires concurrent cash checkouts at one item and checks
// that the server never sells more units than were on the shelf.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/middleware"

	"github.com/google/uuid"
)

// TestResult contains metrics for a single request
type TestResult struct {
	Success      bool
	OutOfStock   bool
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests      int
	SuccessfulRequests int
	OutOfStockRequests int
	FailedRequests     int
	TotalTime          time.Duration
	MinResponseTime    time.Duration
	MaxResponseTime    time.Duration
	TotalResponseTime  time.Duration
	ResponseTimes      []time.Duration
	ErrorCounts        map[string]int
	Lock               sync.Mutex
}

// options holds the command line flags
type options struct {
	baseURL   string
	token     string
	cashierID string
	itemID    uint64
	quantity  int
	delay     time.Duration
}

func main() {
	concurrency := flag.Int("c", 10, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of checkouts to attempt")
	itemID := flag.Uint64("item", 1, "Item ID every checkout buys")
	quantity := flag.Int("qty", 1, "Units per checkout")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	token := flag.String("token", "", "Bearer token when auth is enabled")
	cashierID := flag.String("cashier", "1", "X-Cashier-ID header when auth is disabled")
	delayMs := flag.Int("delay", 0, "Delay between requests in milliseconds")
	flag.Parse()

	opts := options{
		baseURL:   *baseURL,
		token:     *token,
		cashierID: *cashierID,
		itemID:    *itemID,
		quantity:  *quantity,
		delay:     time.Duration(*delayMs) * time.Millisecond,
	}
	client := &http.Client{Timeout: 10 * time.Second}

	before, err := fetchItem(client, opts)
	if err != nil {
		fmt.Printf("Failed to read item %d: %v\n", opts.itemID, err)
		os.Exit(1)
	}

	fmt.Printf("Load testing checkout of item %d (%s), stock %d\n", before.ID, before.Name, before.Stock)
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)
	fmt.Printf("Total checkouts: %d x %d units\n", *totalRequests, opts.quantity)

	stats := &TestStats{
		TotalRequests:   *totalRequests,
		MinResponseTime: time.Hour,
		ErrorCounts:     make(map[string]int),
		ResponseTimes:   make([]time.Duration, 0, *totalRequests),
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(client, opts, jobs, results)
		}()
	}

	go func() {
		for i := 0; i < *totalRequests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range results {
			stats.record(result)
		}
	}()

	startTime := time.Now()
	wg.Wait()
	close(results)
	<-collected
	stats.TotalTime = time.Since(startTime)

	after, err := fetchItem(client, opts)
	if err != nil {
		fmt.Printf("Failed to re-read item %d: %v\n", opts.itemID, err)
		os.Exit(1)
	}

	printResults(stats)
	if !checkStock(before, after, stats, opts.quantity) {
		os.Exit(1)
	}
}

func worker(client *http.Client, opts options, jobs <-chan int, results chan<- TestResult) {
	for range jobs {
		if opts.delay > 0 {
			time.Sleep(opts.delay)
		}
		results <- checkout(client, opts)
	}
}

func checkout(client *http.Client, opts options) TestResult {
	body, err := json.Marshal(dto.CheckoutRequest{
		Items:         []dto.CheckoutItemRequest{{ID: opts.itemID, Quantity: opts.quantity}},
		PaymentMethod: "cash",
		Notes:         "loadtest",
	})
	if err != nil {
		return TestResult{Error: err}
	}

	req, err := http.NewRequest(http.MethodPost, opts.baseURL+"/api/pos/checkout", bytes.NewReader(body))
	if err != nil {
		return TestResult{Error: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handler.IdempotencyKeyHeader, uuid.NewString())
	authorize(req, opts)

	start := time.Now()
	resp, err := client.Do(req)
	result := TestResult{ResponseTime: time.Since(start)}
	if err != nil {
		result.Error = err
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		result.Success = true
	case resp.StatusCode == http.StatusUnprocessableEntity:
		// the expected rejection once the shelf is empty
		result.OutOfStock = true
	default:
		var errResp dto.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			result.Error = fmt.Errorf("HTTP %d: %s", resp.StatusCode, errResp.Message)
		} else {
			result.Error = fmt.Errorf("HTTP status code %d", resp.StatusCode)
		}
	}
	return result
}

func fetchItem(client *http.Client, opts options) (*dto.ItemResponse, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/pos/items/%d", opts.baseURL, opts.itemID), nil)
	if err != nil {
		return nil, err
	}
	authorize(req, opts)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status code %d", resp.StatusCode)
	}

	var item dto.ItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

func authorize(req *http.Request, opts options) {
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
		return
	}
	req.Header.Set(middleware.CashierIDHeader, opts.cashierID)
}

func (s *TestStats) record(result TestResult) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	switch {
	case result.Success:
		s.SuccessfulRequests++
	case result.OutOfStock:
		s.OutOfStockRequests++
	default:
		s.FailedRequests++
		errMsg := "unknown"
		if result.Error != nil {
			errMsg = result.Error.Error()
		}
		s.ErrorCounts[errMsg]++
	}

	s.ResponseTimes = append(s.ResponseTimes, result.ResponseTime)
	s.TotalResponseTime += result.ResponseTime
	if result.ResponseTime < s.MinResponseTime {
		s.MinResponseTime = result.ResponseTime
	}
	if result.ResponseTime > s.MaxResponseTime {
		s.MaxResponseTime = result.ResponseTime
	}
}

// checkStock reports whether the stock drop matches the accepted checkouts
func checkStock(before, after *dto.ItemResponse, stats *TestStats, quantity int) bool {
	sold := before.Stock - after.Stock
	expected := stats.SuccessfulRequests * quantity

	fmt.Println("\n================= STOCK CHECK =================")
	fmt.Printf("Stock before:        %d\n", before.Stock)
	fmt.Printf("Stock after:         %d\n", after.Stock)
	fmt.Printf("Units sold:          %d\n", sold)
	fmt.Printf("Units accepted:      %d\n", expected)

	ok := true
	if after.Stock < 0 {
		fmt.Println("FAIL: stock went negative")
		ok = false
	}
	if sold != expected {
		// other traffic against the same item also moves the number
		fmt.Println("FAIL: stock movement does not match accepted checkouts")
		ok = false
	}
	if expected > before.Stock {
		fmt.Println("FAIL: more units sold than were in stock")
		ok = false
	}
	if ok {
		fmt.Println("PASS: no overselling")
	}
	fmt.Println("================================================")
	return ok
}

func printResults(stats *TestStats) {
	tps := float64(stats.SuccessfulRequests) / stats.TotalTime.Seconds()

	var avgResponseTime time.Duration
	if len(stats.ResponseTimes) > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(len(stats.ResponseTimes))
	}

	var p50, p90, p95, p99 time.Duration
	if len(stats.ResponseTimes) > 0 {
		sorted := make([]time.Duration, len(stats.ResponseTimes))
		copy(sorted, stats.ResponseTimes)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		p50 = sorted[len(sorted)*50/100]
		p90 = sorted[len(sorted)*90/100]
		p95 = sorted[len(sorted)*95/100]
		p99 = sorted[len(sorted)*99/100]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	fmt.Printf("Completed Sales:     %d\n", stats.SuccessfulRequests)
	fmt.Printf("Out Of Stock:        %d\n", stats.OutOfStockRequests)
	fmt.Printf("Failed Requests:     %d\n", stats.FailedRequests)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Sales Per Second:    %.2f\n", tps)

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avgResponseTime)
	fmt.Printf("Minimum Response:    %v\n", stats.MinResponseTime)
	fmt.Printf("Maximum Response:    %v\n", stats.MaxResponseTime)
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P90 Response:        %v\n", p90)
	fmt.Printf("P95 Response:        %v\n", p95)
	fmt.Printf("P99 Response:        %v\n", p99)

	if stats.FailedRequests > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d (%.1f%%)\n", errMsg, count,
				float64(count)/float64(stats.TotalRequests)*100)
		}
	}
}
