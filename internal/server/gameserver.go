package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/config"
	"github.com/cory-johannsen/fablemud/internal/game/command"
)

// GameServer accepts player connections on a TCP port and runs one
// sequential command loop per connection. Each line of input is processed to
// completion, including persistence marking, before the next line is read;
// independent connections run concurrently.
type GameServer struct {
	cfg       config.ServerConfig
	processor *command.Processor
	logger    *zap.Logger

	listener net.Listener
	wg       sync.WaitGroup
	quit     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewGameServer creates a server over the command processor.
//
// Precondition: processor and logger must be non-nil.
func NewGameServer(cfg config.ServerConfig, processor *command.Processor, logger *zap.Logger) *GameServer {
	return &GameServer{
		cfg:       cfg,
		processor: processor,
		logger:    logger,
		quit:      make(chan struct{}),
	}
}

// ListenAndServe starts the TCP listener and accepts connections until Stop
// is called. Blocks until the server is stopped.
//
// Postcondition: the listener is closed when this method returns.
func (s *GameServer) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}

	s.mu.Lock()
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	s.logger.Info("game server listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("game_id", s.cfg.GameID),
		zap.Duration("startup", time.Since(start)),
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
				s.logger.Error("accepting connection", zap.Error(err))
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn runs the session loop for one connection. The first line names
// the player; every subsequent line is one command.
func (s *GameServer) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()
	start := time.Now()
	addr := conn.RemoteAddr().String()

	s.logger.Info("player connected", zap.String("remote_addr", addr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.quit:
			cancel()
			conn.Close()
		case <-ctx.Done():
		}
	}()

	scanner := bufio.NewScanner(conn)
	s.write(conn, "Who are you?\n")

	entityID := ""
	for entityID == "" {
		if !s.readLine(conn, scanner) {
			return
		}
		entityID = strings.TrimSpace(scanner.Text())
	}

	s.logger.Info("player identified",
		zap.String("remote_addr", addr),
		zap.String("entity_id", entityID),
	)
	s.write(conn, fmt.Sprintf("Welcome, %s. Type 'help' for commands.\n", entityID))

	for s.readLine(conn, scanner) {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			s.write(conn, "Farewell.\n")
			break
		}

		_, res := s.processor.Process(ctx, entityID, line)
		s.write(conn, res.Message+"\n")
		if slots, ok := res.Data["slots"]; ok {
			if blob, err := json.MarshalIndent(slots, "", "  "); err == nil {
				s.write(conn, string(blob)+"\n")
			}
		}
	}

	s.logger.Info("player disconnected",
		zap.String("remote_addr", addr),
		zap.String("entity_id", entityID),
		zap.Duration("duration", time.Since(start)),
	)
}

// readLine applies the configured read deadline before scanning one line.
func (s *GameServer) readLine(conn net.Conn, scanner *bufio.Scanner) bool {
	if s.cfg.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}
	return scanner.Scan()
}

func (s *GameServer) write(conn net.Conn, text string) {
	if s.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if _, err := conn.Write([]byte(text)); err != nil {
		s.logger.Debug("write failed", zap.Error(err))
	}
}

// Stop gracefully stops the server, closing the listener and waiting for all
// active sessions to finish.
//
// Postcondition: all connections are closed and goroutines have exited.
func (s *GameServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()

	s.logger.Info("game server stopped")
}

// Addr returns the actual listening address, or empty string if not yet listening.
func (s *GameServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
