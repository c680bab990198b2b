// Package main provides a performance benchmarking tool for the PESS CLI.
// It measures scoring throughput across different batch sizes and persistence
// backends, running each test multiple times, treating the first successful
// run against a fresh store as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - pess binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated payload files and the sqlite store
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-store average, cold run and average of warm runs).
type BenchmarkResult struct {
	BatchSize   int
	Command     string
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoStoreRuns int
	StoreRuns   int
	BatchSizes  []int
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     2 * time.Minute,
		Workers:     8,
		NoStoreRuns: 3,
		StoreRuns:   4,
		BatchSizes:  []int{1, 10, 100, 1000},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the pess binary and work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("pess"); err != nil {
		return fmt.Errorf("pess binary not found in PATH")
	}

	if _, err := os.Stat(config.WorkDir); os.IsNotExist(err) {
		return fmt.Errorf("work directory not found at %s", config.WorkDir)
	}

	return nil
}

// runBenchmarks executes all benchmark tests across configured batch sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: batch sizes %v, %v timeout, %d workers, no-store: %d runs, store: %d runs\n",
		config.BatchSizes, config.Timeout, config.Workers, config.NoStoreRuns, config.StoreRuns)

	for _, size := range config.BatchSizes {
		fmt.Printf("Benchmarking batch size %d\n", size)

		payloadFile, err := writePayloadFile(config.WorkDir, size)
		if err != nil {
			fmt.Printf("  Failed to generate payloads: %v\n", err)
			continue
		}

		command := "batch"
		if size == 1 {
			command = "score"
		}

		result := runBenchmarkSuite(config, size, command, payloadFile)
		results = append(results, result)
	}

	return results
}

// runBenchmarkSuite runs both no-store and store benchmarks for one batch size
func runBenchmarkSuite(config BenchmarkConfig, size int, command, payloadFile string) BenchmarkResult {
	fmt.Printf("Running %s with %d payload(s)\n", command, size)

	// Helper to run a benchmark phase
	runPhase := func(storeBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, payloadFile, storeBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-store runs
	_, noStoreAvg := runPhase("none", config.NoStoreRuns, "No-store")

	// Phase 2: Store runs against sqlite
	coldTime, warmAvg := runPhase("sqlite", config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		BatchSize:   size,
		Command:     command,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a pess command multiple times with the specified store backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command, payloadFile, storeBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		command, payloadFile,
		"--store-backend", storeBackend,
		"--workers", fmt.Sprintf("%d", config.Workers),
		"--output", "json",
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("pess", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// writePayloadFile generates a JSON payload file with n scoring requests
func writePayloadFile(workDir string, n int) (string, error) {
	var sb strings.Builder
	if n > 1 {
		sb.WriteString("[")
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(fmt.Sprintf(`{
			"session_id": "sess-bench-%d",
			"ticket_id": "PESS-%d",
			"task_type": "feature",
			"template_name": "feature_task",
			"template_version": "2.1.0",
			"prompt_hash": "a665a45920422f9d417e4867efdc4fb8a04a1f3fff1fa07e998e86f7f7a27ae3",
			"retry_count": %d,
			"edit_similarity": 0.8,
			"test_coverage": 0.7
		}`, i+1, 1000+i, i%4))
	}
	if n > 1 {
		sb.WriteString("]")
	}

	name := "score"
	if n > 1 {
		name = "batch"
	}
	path := filepath.Join(workDir, fmt.Sprintf("payloads_%s_%d.json", name, n))
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// isSuccess checks if command output indicates successful scoring
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, `"final_score"`) &&
		!strings.Contains(outputStr, `"label": "Failed"`)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/pess_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"batch_size", "cmd", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		record := []string{
			fmt.Sprintf("%d", result.BatchSize),
			result.Command,
			result.NoStoreTime,
			result.ColdTime,
			result.WarmTime,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, result := range results {
		fmt.Printf("  batch=%-5d %-6s: No-store: %s, Cold: %s, Warm: %s\n",
			result.BatchSize, result.Command, result.NoStoreTime, result.ColdTime, result.WarmTime)
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
