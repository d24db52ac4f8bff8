package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

// Config for the terminal chat client. CHAT_TOKEN is obtained from
// /api/auth/login beforehand.
type Config struct {
	ServerAddr string `envconfig:"CHAT_SERVER_ADDR" default:"localhost:8080"`
	Token      string `envconfig:"CHAT_TOKEN" required:"true"`
	// CHAT_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type summary struct {
	ConversationID string `json:"conversation_id"`
	Counterpart    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"counterpart"`
	LastMessage struct {
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"last_message"`
	UnreadCount int `json:"unread_count"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	url := fmt.Sprintf("ws://%s/ws?token=%s", cfg.ServerAddr, cfg.Token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer conn.Close()

	fmt.Println("Connected. Commands: /list, /send <user_id> <text>, /read <conversation_id> <sender_id>, /typing <user_id>, /quit")

	go readLoop(conn, cfg.Colours)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return
		}
		if line == "/list" {
			listConversations(cfg)
			continue
		}
		if err := handleCommand(conn, line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func handleCommand(conn *websocket.Conn, line string) error {
	parts := strings.SplitN(line, " ", 3)
	switch parts[0] {
	case "/send":
		if len(parts) < 3 {
			return fmt.Errorf("usage: /send <user_id> <text>")
		}
		return send(conn, "send_message", map[string]any{
			"recipient_id": parts[1],
			"content":      parts[2],
		})
	case "/read":
		if len(parts) < 3 {
			return fmt.Errorf("usage: /read <conversation_id> <sender_id>")
		}
		return send(conn, "mark_read", map[string]any{
			"conversation_id": parts[1],
			"sender_id":       parts[2],
		})
	case "/typing":
		if len(parts) < 2 {
			return fmt.Errorf("usage: /typing <user_id>")
		}
		return send(conn, "typing", map[string]any{
			"recipient_id": parts[1],
			"is_typing":    true,
		})
	default:
		return fmt.Errorf("unknown command %q", parts[0])
	}
}

func send(conn *websocket.Conn, event string, data map[string]any) error {
	payload, err := json.Marshal(map[string]any{"event": event, "data": data})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func readLoop(conn *websocket.Conn, colours bool) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			fmt.Println("Connection closed:", err)
			os.Exit(0)
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		fmt.Println(renderEvent(f, colours))
	}
}

func renderEvent(f frame, colours bool) string {
	line := fmt.Sprintf("[%s] %s", f.Event, string(f.Data))
	if !colours {
		return line
	}
	switch f.Event {
	case "new_message":
		return color.New(color.FgGreen).Render(line)
	case "message_error":
		return color.New(color.FgRed).Render(line)
	case "user_online", "user_offline", "online_users", "user_typing":
		return color.New(color.FgCyan).Render(line)
	case "message_delivered", "messages_read":
		return color.New(color.FgYellow).Render(line)
	default:
		return line
	}
}

// listConversations pulls the read model over HTTP and renders it as a table.
func listConversations(cfg Config) {
	req, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("http://%s/api/conversations", cfg.ServerAddr), nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Server returned %d: %s\n", resp.StatusCode, body.String())
		return
	}

	var summaries []summary
	if err := json.Unmarshal(body.Bytes(), &summaries); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Conversation", "Counterpart", "Last Message", "At", "Unread"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, s := range summaries {
		preview := s.LastMessage.Content
		if len(preview) > 40 {
			preview = preview[:40] + "…"
		}
		table.Append([]string{
			s.ConversationID,
			s.Counterpart.Username,
			preview,
			s.LastMessage.CreatedAt.Format("15:04:05"),
			fmt.Sprintf("%d", s.UnreadCount),
		})
	}
	table.Render()
}
