// Package main provides a stress testing tool for the chat WebSocket server.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"townsquare/internal/config"
	"townsquare/internal/middleware"
	"townsquare/internal/notifications"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	MessagesSent         int64
	MessagesReceived     int64
	RateLimited          int64
	Errors               int64
}

var metrics Metrics

var errTicketsUnavailable = errors.New("tickets unavailable")

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	token := flag.String("token", "", "Bearer token; minted from local config when empty")
	userID := flag.Uint("user", 1, "User ID to mint a token for when -token is empty")
	chatroomID := flag.Uint("chatroom", 1, "Chatroom to join; the user must be a member")
	clients := flag.Int("clients", 50, "Number of concurrent clients")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	interval := flag.Duration("interval", 5*time.Second, "Delay between messages per client")
	flag.Parse()

	log.Printf("Starting chat stress test against %s (%d clients, %v)", *host, *clients, *duration)

	if *token == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		minted, err := middleware.IssueToken(cfg, *userID, *duration+time.Hour)
		if err != nil {
			log.Fatalf("Failed to mint token: %v", err)
		}
		*token = minted
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(*host, *token, *chatroomID, *interval, i, stopChan, &wg)
		time.Sleep(50 * time.Millisecond) // Stagger connections to allow ticket issuance
	}

	select {
	case <-time.After(*duration):
		log.Println("Test duration reached")
	case <-interrupt:
		log.Println("Interrupted by user")
	}

	close(stopChan)
	log.Println("Waiting for clients to disconnect...")
	wg.Wait()

	printMetrics()
}

func getTicket(host, token string) (string, error) {
	ticketURL := fmt.Sprintf("http://%s/api/ws/ticket", host)
	req, _ := http.NewRequest(http.MethodPost, ticketURL, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		return "", errTicketsUnavailable
	default:
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}

	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Ticket, nil
}

func dial(host, token string) (*websocket.Conn, error) {
	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/chat"}
	header := http.Header{}

	ticket, err := getTicket(host, token)
	switch {
	case err == nil:
		u.RawQuery = "ticket=" + url.QueryEscape(ticket)
	case errors.Is(err, errTicketsUnavailable):
		// Server runs without Redis; fall back to the bearer header.
		header.Set("Authorization", "Bearer "+token)
	default:
		return nil, err
	}

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return c, err
}

func runClient(host, token string, chatroomID uint, interval time.Duration, id int, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	c, err := dial(host, token)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	defer func() { _ = c.Close() }()

	if err := c.WriteJSON(notifications.ClientFrame{Type: notifications.FrameJoin, ChatroomID: chatroomID}); err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		for {
			var frame notifications.ServerFrame
			if err := c.ReadJSON(&frame); err != nil {
				return
			}
			switch {
			case frame.Code == "RATE_LIMITED":
				atomic.AddInt64(&metrics.RateLimited, 1)
			case frame.Type == notifications.FrameError:
				atomic.AddInt64(&metrics.Errors, 1)
			case frame.Type == notifications.FrameReceiveMessage:
				atomic.AddInt64(&metrics.MessagesReceived, 1)
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopChan:
			_ = c.WriteJSON(notifications.ClientFrame{Type: notifications.FrameLeave, ChatroomID: chatroomID})
			_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			err := c.WriteJSON(notifications.ClientFrame{
				Type:       notifications.FrameSendMessage,
				ChatroomID: chatroomID,
				Text:       fmt.Sprintf("Stress test message from client %d", id),
			})
			if err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				return
			}
			atomic.AddInt64(&metrics.MessagesSent, 1)
		}
	}
}

func printMetrics() {
	log.Println("Test Results")
	log.Println("============")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Messages Sent: %d", atomic.LoadInt64(&metrics.MessagesSent))
	log.Printf("Messages Received: %d", atomic.LoadInt64(&metrics.MessagesReceived))
	log.Printf("Rate Limited: %d", atomic.LoadInt64(&metrics.RateLimited))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
