// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/mpu6050_logger/internal/config"
	"github.com/relabs-tech/mpu6050_logger/internal/mpu6050"
)

// RegisterCmd is a websocket request from the register debug page.
type RegisterCmd struct {
	Action  string `json:"action"` // "get_map", "read", "read_all", "write", "init", "export_config"
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// RegisterResponse is sent back for every command.
type RegisterResponse struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "status", "export_config", "error"
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	RegisterMap []mpu6050.RegisterInfo `json:"register_map,omitempty"`
	Config      string                 `json:"config,omitempty"`
	Filename    string                 `json:"filename,omitempty"`
}

// RegisterConfigFile represents the JSON structure for exported register configuration
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// RegisterDebugServer serializes register access to one sensor for any
// number of websocket sessions.
type RegisterDebugServer struct {
	mu       sync.Mutex
	dev      mpu6050.RegisterReadWriter
	settings mpu6050.Settings
	accel    mpu6050.Sampler
	regs     []mpu6050.RegisterInfo
	writable map[byte]bool
}

// NewRegisterDebugServer serves dev. settings are reapplied by the "init" action.
func NewRegisterDebugServer(dev mpu6050.RegisterReadWriter, cfg *config.Config) (*RegisterDebugServer, error) {
	accel, err := mpu6050.NewSampler(cfg.AccelSampler())
	if err != nil {
		return nil, err
	}
	s := &RegisterDebugServer{
		dev:      dev,
		settings: cfg.Settings(),
		accel:    accel,
		regs:     mpu6050.RegisterMap(),
		writable: make(map[byte]bool),
	}
	for _, r := range s.regs {
		addr, err := parseRegister(r.Address)
		if err != nil {
			return nil, fmt.Errorf("register map entry %s: %w", r.Name, err)
		}
		if strings.Contains(r.Access, "W") {
			s.writable[addr] = true
		}
	}
	return s, nil
}

// Handler routes /ws, /api/sample and the static debug page.
func (s *RegisterDebugServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/api/sample", s.HandleSample)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})
	return mux
}

// HandleWS handles the WebSocket connection for register debugging
func (s *RegisterDebugServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Send register map on connection
	if err := conn.WriteJSON(s.registerMap()); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	for {
		var cmd RegisterCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(s.Execute(cmd)); err != nil {
			log.Printf("register_debug: write error: %v", err)
			return
		}
	}
}

// Execute runs one command against the device.
func (s *RegisterDebugServer) Execute(cmd RegisterCmd) RegisterResponse {
	switch cmd.Action {
	case "get_map":
		return s.registerMap()
	case "read":
		return s.handleRead(cmd)
	case "read_all":
		return s.handleReadAll()
	case "write":
		return s.handleWrite(cmd)
	case "init":
		return s.handleInit()
	case "export_config":
		return s.handleExportConfig()
	case "":
		return errorResponse("missing or invalid action field")
	default:
		return errorResponse(fmt.Sprintf("unknown action: %s", cmd.Action))
	}
}

func (s *RegisterDebugServer) registerMap() RegisterResponse {
	return RegisterResponse{Type: "register_map", RegisterMap: s.regs}
}

func (s *RegisterDebugServer) handleRead(cmd RegisterCmd) RegisterResponse {
	if cmd.Address == "" {
		return errorResponse("missing addr field")
	}
	addr, err := parseRegister(cmd.Address)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}

	s.mu.Lock()
	value, err := s.dev.ReadRegister(addr)
	s.mu.Unlock()
	if err != nil {
		return errorResponse(fmt.Sprintf("read error: %v", err))
	}

	return RegisterResponse{
		Type:      "register_data",
		Address:   hexByte(addr),
		Value:     hexByte(value),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (s *RegisterDebugServer) handleReadAll() RegisterResponse {
	regs, err := s.readAll()
	if err != nil {
		return errorResponse(fmt.Sprintf("read all error: %v", err))
	}
	return RegisterResponse{
		Type:      "register_data",
		Registers: regs,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (s *RegisterDebugServer) readAll() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	regs := make(map[string]string, len(s.regs))
	for _, r := range s.regs {
		addr, _ := parseRegister(r.Address) // checked in NewRegisterDebugServer
		value, err := s.dev.ReadRegister(addr)
		if err != nil {
			return nil, err
		}
		regs[hexByte(addr)] = hexByte(value)
	}
	return regs, nil
}

func (s *RegisterDebugServer) handleWrite(cmd RegisterCmd) RegisterResponse {
	if cmd.Address == "" || cmd.Value == "" {
		return errorResponse("missing addr or value field")
	}
	addr, err := parseRegister(cmd.Address)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}
	value, err := parseRegister(cmd.Value)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid value format: %s", cmd.Value))
	}
	if !s.writable[addr] {
		return errorResponse(fmt.Sprintf("register %s is not writable", hexByte(addr)))
	}

	s.mu.Lock()
	err = s.dev.WriteRegister(addr, value)
	s.mu.Unlock()
	if err != nil {
		return errorResponse(fmt.Sprintf("write error: %v", err))
	}

	return RegisterResponse{
		Type:      "register_data",
		Address:   hexByte(addr),
		Value:     hexByte(value),
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	}
}

func (s *RegisterDebugServer) handleInit() RegisterResponse {
	s.mu.Lock()
	err := mpu6050.Configure(s.dev, s.settings)
	s.mu.Unlock()
	if err != nil {
		return errorResponse(fmt.Sprintf("reinit error: %v", err))
	}
	return RegisterResponse{
		Type:    "status",
		Status:  "initialized",
		Message: "MPU6050 reinitialized successfully",
	}
}

func (s *RegisterDebugServer) handleExportConfig() RegisterResponse {
	regs, err := s.readAll()
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}

	now := time.Now()
	configJSON, err := json.Marshal(RegisterConfigFile{
		Version:   1,
		Timestamp: now.Format(time.RFC3339),
		Registers: regs,
	})
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}
	return RegisterResponse{
		Type:     "export_config",
		Message:  "config exported",
		Config:   string(configJSON),
		Filename: fmt.Sprintf("mpu6050_%s_registers.json", now.Format("20060102_150405")),
	}
}

// HandleSample serves one live accelerometer reading as JSON.
func (s *RegisterDebugServer) HandleSample(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	s.mu.Lock()
	accel, err := s.accel.Sample(s.dev)
	s.mu.Unlock()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(accel)
}

func errorResponse(message string) RegisterResponse {
	return RegisterResponse{Type: "error", Message: message}
}

// parseRegister accepts "0x1B" or decimal.
func parseRegister(s string) (byte, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

func hexByte(b byte) string {
	return fmt.Sprintf("0x%02X", b)
}

// RunRegisterDebug serves the register debug tool on REGISTER_DEBUG_PORT.
func RunRegisterDebug(cfg *config.Config) error {
	dev, err := OpenSensor(cfg)
	if err != nil {
		return err
	}
	defer dev.Close()

	srv, err := NewRegisterDebugServer(dev, cfg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.RegisterDebugPort)
	log.Printf("register_debug: listening on %s", addr)
	log.Printf("register_debug: open http://localhost%s in your browser", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
