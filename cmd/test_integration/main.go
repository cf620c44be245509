package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Smoke test against a running server, e.g. one started with
// FIXTURE_PATH=testdata/campaign.yaml.
func main() {
	baseURL := os.Getenv("LOREGRAPH_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	caller := os.Getenv("LOREGRAPH_CALLER")
	if caller == "" {
		caller = "smoke-test"
	}

	// Wait for server to start
	if !waitHealthy(baseURL, 10*time.Second) {
		fmt.Println("FAILED: server not healthy")
		os.Exit(1)
	}

	fmt.Println("Starting Integration Test...")

	checks := []struct {
		name   string
		path   string
		status int
	}{
		{"Mind map", "/graph/mind-map?depth=1", http.StatusOK},
		{"World graph", "/graph?worldId=w1&depth=1&nodeTypes=Campaign", http.StatusOK},
		{"Campaign hierarchy", "/graph/hierarchy?campaignId=c1&depth=2", http.StatusOK},
		{"Unknown world", "/graph?worldId=does-not-exist", http.StatusNotFound},
		{"Bad depth", "/graph?depth=-1", http.StatusBadRequest},
	}

	for i, c := range checks {
		fmt.Printf("%d. %s...\n", i+1, c.name)
		if !sendRequest(baseURL+c.path, caller, c.status) {
			fmt.Printf("FAILED: %s\n", c.name)
			os.Exit(1)
		}
		fmt.Printf("PASSED: %s\n", c.name)
	}
}

func waitHealthy(baseURL string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false
}

func sendRequest(url, caller string, wantStatus int) bool {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("X-User-ID", caller)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		fmt.Printf("Request failed with status %d (want %d): %s\n", resp.StatusCode, wantStatus, string(respBody))
		return false
	}

	var envelope struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		fmt.Printf("Invalid envelope: %v\n", err)
		return false
	}
	if envelope.Success != (wantStatus == http.StatusOK) {
		fmt.Printf("Unexpected success=%v: %s\n", envelope.Success, string(respBody))
		return false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return true
}
