// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/mpu6050_logger/internal/config"
	"github.com/relabs-tech/mpu6050_logger/internal/recorder"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins on the local network
	},
}

// wsWriteTimeout bounds every websocket write; a client slower than this is dropped.
const wsWriteTimeout = 2 * time.Second

// Hub keeps the latest sample and fans every new one out to websocket clients.
type Hub struct {
	mu           sync.Mutex
	last         []byte
	clients      map[*websocket.Conn]struct{}
	writeTimeout time.Duration
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:      make(map[*websocket.Conn]struct{}),
		writeTimeout: wsWriteTimeout,
	}
}

// send writes msg to conn within the write timeout. Callers hold h.mu.
func (h *Hub) send(conn *websocket.Conn, msg []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, msg)
}

// Publish stores payload as the latest sample and sends it to every client.
// Payloads that are not a JSON sample are rejected.
func (h *Hub) Publish(payload []byte) error {
	var s recorder.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return fmt.Errorf("sample unmarshal error: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = append([]byte(nil), payload...)
	for conn := range h.clients {
		if err := h.send(conn, h.last); err != nil {
			log.Printf("web: dropping websocket client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
	return nil
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleSample serves the latest sample as JSON.
func (h *Hub) HandleSample(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()

	if last == nil {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(last); err != nil {
		log.Printf("web: write error: %v", err)
	}
}

// HandleWS streams samples to a websocket client, starting with the latest one.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	if h.last != nil {
		if err := h.send(conn, h.last); err != nil {
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
			return
		}
	}
	h.mu.Unlock()

	// Drain until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("web: websocket error: %v", err)
			}
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Handler routes /api/sample, /ws and static files from ./web.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sample", h.HandleSample)
	mux.HandleFunc("/ws", h.HandleWS)
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

// RunWeb subscribes to TOPIC_SAMPLE and serves the hub on WEB_SERVER_PORT.
func RunWeb(cfg *config.Config) error {
	if cfg.MQTTBroker == "" {
		return errors.New("web: MQTT_BROKER is not set")
	}
	hub := NewHub()

	client, err := recorder.Connect(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicSample, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := hub.Publish(msg.Payload()); err != nil {
			log.Printf("web: %v", err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to MQTT topic %s", cfg.TopicSample)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, hub.Handler())
}
