package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	mpvConnectTimeout = 5 * time.Second
	mpvConnectRetry   = 100 * time.Millisecond
)

// MPVSink drives an mpv subprocess over its JSON IPC socket. mpv runs in
// idle mode with video disabled; each sink owns one player process.
type MPVSink struct {
	name   string
	socket string
	cmd    *exec.Cmd
	logger *zap.Logger

	mu   sync.Mutex
	conn net.Conn

	events chan Event
}

// NewMPVSink launches the player binary and connects to its IPC socket.
func NewMPVSink(binary, socketDir, name string, logger *zap.Logger) (*MPVSink, error) {
	if socketDir == "" {
		socketDir = os.TempDir()
	}
	if err := os.MkdirAll(socketDir, 0o755); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	socket := filepath.Join(socketDir, "kiosk-"+name+".sock")
	os.Remove(socket)

	cmd := exec.Command(binary,
		"--no-video",
		"--no-terminal",
		"--idle=yes",
		"--input-ipc-server="+socket,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start player: %w", err)
	}

	conn, err := dialWithRetry(socket, mpvConnectTimeout)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("connect player ipc: %w", err)
	}

	s := &MPVSink{
		name:   name,
		socket: socket,
		cmd:    cmd,
		logger: logger,
		conn:   conn,
		events: make(chan Event, 4),
	}
	go s.readLoop()
	return s, nil
}

func dialWithRetry(socket string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.Dial("unix", socket)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(mpvConnectRetry)
	}
}

func (s *MPVSink) Load(path string) error {
	if err := s.command("set_property", "pause", true); err != nil {
		return err
	}
	return s.command("loadfile", path, "replace")
}

func (s *MPVSink) Play() error {
	return s.command("set_property", "pause", false)
}

func (s *MPVSink) Stop() error {
	return s.command("stop")
}

func (s *MPVSink) Restart() error {
	return s.command("seek", 0, "absolute")
}

func (s *MPVSink) SetVolume(v float64) error {
	return s.command("set_property", "volume", v*100)
}

func (s *MPVSink) Events() <-chan Event { return s.events }

func (s *MPVSink) Close() error {
	s.command("quit")

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.cmd.Process.Kill()
		<-done
	}
	os.Remove(s.socket)
	return nil
}

// command sends one IPC command. Responses are handled by the read loop;
// failed commands show up there as error status lines.
func (s *MPVSink) command(args ...any) error {
	payload, err := json.Marshal(map[string]any{"command": args})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("player ipc closed")
	}
	_, err = s.conn.Write(append(payload, '\n'))
	return err
}

type mpvMessage struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

// readLoop consumes IPC lines. Only an end-of-file with reason "eof" is a
// natural end; "stop" reasons come from our own stop commands.
func (s *MPVSink) readLoop() {
	defer close(s.events)

	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Error != "" && msg.Error != "success" {
			s.logger.Warn("player command failed",
				zap.String("sink", s.name), zap.String("error", msg.Error))
		}
		if msg.Event == "end-file" && msg.Reason == "eof" {
			select {
			case s.events <- EventEnded:
			default:
			}
		}
	}
}
