package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"RELAY_SERVER_ADDR,default=localhost:8080"`
}

type frame struct {
	Kind       string `json:"kind"`
	SessionKey string `json:"session_key"`
	Username   string `json:"username"`
	Message    string `json:"message"`
}

type packet struct {
	Type       string   `json:"type"`
	Usernames  []string `json:"usernames"`
	SenderName string   `json:"sender_name"`
	Message    string `json:"message"`
	Created    string `json:"created"`
	Value      []struct {
		Username string `json:"username"`
		UUID     string `json:"uuid"`
	} `json:"value"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the account handshake, the websocket lifecycle, and the
// two pumps: stdin lines out, relay packets in.
func run() (int, error) {
	username := flag.String("username", "", "your username")
	password := flag.String("password", "", "your password")
	peer := flag.String("peer", "", "the user you are chatting with")
	register := flag.Bool("register", false, "create the account before logging in")
	flag.Parse()

	if *username == "" || *password == "" || *peer == "" {
		return exitConfig, fmt.Errorf("username, password and peer are required")
	}

	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	sessionKey, err := obtainSession(config.ServerAddress, *username, *password, *register)
	if err != nil {
		return exitRuntime, err
	}

	socketURL := fmt.Sprintf("ws://%s/ws/%s/%s", config.ServerAddress, sessionKey, *peer)
	conn, _, err := websocket.DefaultDialer.Dial(socketURL, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to relay at %s: %w", config.ServerAddress, err)
	}
	defer conn.Close()

	color.Green.Printf("Connected as %s, chatting with %s\n", *username, *peer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		readLoop(conn)
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			out := frame{Kind: "new-message", SessionKey: sessionKey, Username: *peer, Message: line}
			if err := conn.WriteJSON(out); err != nil {
				color.Red.Printf("send failed: %v\n", err)
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}
	return exitOK, nil
}

// obtainSession logs in (optionally registering first) and returns the
// session key used in the websocket path.
func obtainSession(addr, username, password string, register bool) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})

	if register {
		resp, err := http.Post(fmt.Sprintf("http://%s/register", addr), "application/json", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("register failed: %w", err)
		}
		resp.Body.Close()
	}

	resp, err := http.Post(fmt.Sprintf("http://%s/login", addr), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login rejected with status %d", resp.StatusCode)
	}

	var token struct {
		SessionKey string `json:"session_key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("could not decode login response: %w", err)
	}
	return token.SessionKey, nil
}

// readLoop renders every inbound packet until the connection drops.
func readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			color.Yellow.Println("disconnected from relay")
			return
		}

		var p packet
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}

		switch p.Type {
		case "new-message":
			color.Cyan.Printf("%s", p.SenderName)
			fmt.Printf(": %s ", p.Message)
			color.Gray.Printf("(%s)\n", p.Created)
		case "gone-online":
			color.Green.Printf("online: %v\n", p.Usernames)
		case "users-changed":
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Username", "Connection"})
			table.SetBorder(false)
			for _, entry := range p.Value {
				table.Append([]string{entry.Username, entry.UUID})
			}
			table.Render()
		default:
			// The empty offline packet and anything unrecognized are
			// re-sync hints; nothing to render.
		}
	}
}
