package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"
)

// -----------------------------------------------------------------------------
// Smoke test for a running instance.
//
// Registers a throwaway account, walks the partner API surface, and prints
// each step. Intended for manual verification against a dev server:
//
//	go run ./cmd/test -url http://127.0.0.1:3001
// -----------------------------------------------------------------------------

func main() {
	baseURL := flag.String("url", "http://127.0.0.1:3001", "base URL of the running server")
	flag.Parse()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	email := fmt.Sprintf("smoke-%d@example.com", time.Now().UnixNano())

	steps := []struct {
		name   string
		method string
		path   string
		body   interface{}
		expect int
	}{
		{"health", http.MethodGet, "/api/health", nil, http.StatusOK},
		{"register", http.MethodPost, "/api/auth/register", map[string]string{
			"name":            "Smoke Test",
			"email":           email,
			"password":        "secret123",
			"confirmPassword": "secret123",
		}, http.StatusCreated},
		{"me", http.MethodGet, "/api/me", nil, http.StatusOK},
		{"metrics", http.MethodGet, "/api/metrics", nil, http.StatusOK},
		{"transactions", http.MethodGet, "/api/transactions?limit=5", nil, http.StatusOK},
		{"create key", http.MethodPost, "/api/keys", map[string]string{"name": "smoke"}, http.StatusCreated},
		{"list keys", http.MethodGet, "/api/keys", nil, http.StatusOK},
		{"logout", http.MethodPost, "/api/auth/logout", nil, http.StatusOK},
	}

	failed := 0
	for _, step := range steps {
		status, err := call(client, step.method, *baseURL+step.path, step.body)
		switch {
		case err != nil:
			fmt.Printf("FAIL %-14s %v\n", step.name, err)
			failed++
		case status != step.expect:
			fmt.Printf("FAIL %-14s got %d, want %d\n", step.name, status, step.expect)
			failed++
		default:
			fmt.Printf("ok   %-14s %d\n", step.name, status)
		}
	}

	if failed > 0 {
		fmt.Printf("%d step(s) failed\n", failed)
		os.Exit(1)
	}
	fmt.Println("All steps passed")
}

// -----------------------------------------------------------------------------

func call(client *http.Client, method, url string, body interface{}) (int, error) {
	var payload *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		payload = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
