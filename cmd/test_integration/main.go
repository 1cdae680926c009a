package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func baseURL() string {
	if u := os.Getenv("VYNDA_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

// Smoke test against a running server: demo case, evidence toggles, chat, reset.
func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Creating demo case...")
	var created struct {
		ID          string `json:"id"`
		Probability struct {
			Target int `json:"target"`
			Items  []struct {
				ID string `json:"id"`
			} `json:"items"`
		} `json:"probability"`
	}
	if !sendRequest("POST", "/cases/demo", nil, &created) || created.ID == "" {
		fail("Create demo case")
	}
	fmt.Printf("PASSED: Create demo case (baseline %d%%)\n", created.Probability.Target)

	if len(created.Probability.Items) == 0 {
		fail("Demo case has no evidence items")
	}
	item := created.Probability.Items[0].ID
	casePath := "/cases/" + created.ID

	fmt.Println("2. Toggling evidence...")
	var snap struct {
		Target int `json:"target"`
	}
	if !sendRequest("POST", casePath+"/evidence/"+item+"/toggle", nil, &snap) || snap.Target >= created.Probability.Target {
		fail("Toggle evidence off")
	}
	if !sendRequest("POST", casePath+"/evidence/"+item+"/toggle", nil, &snap) || snap.Target != created.Probability.Target {
		fail("Toggle evidence back on")
	}
	fmt.Println("PASSED: Toggle evidence")

	fmt.Println("3. Chatting with consultant...")
	if !sendRequest("POST", casePath+"/chat", map[string]string{"message": "How long will this take?"}, nil) {
		fail("Chat")
	}
	fmt.Println("PASSED: Chat")

	fmt.Println("4. Resetting case...")
	if !sendRequest("DELETE", casePath, nil, nil) {
		fail("Reset")
	}
	fmt.Println("PASSED: Reset")
}

func fail(step string) {
	fmt.Printf("FAILED: %s\n", step)
	os.Exit(1)
}

func sendRequest(method, endpoint string, payload, out any) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL()+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	fmt.Printf("Response: %s\n", string(respBody))

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			fmt.Printf("Error decoding response: %v\n", err)
			return false
		}
	}
	return true
}
