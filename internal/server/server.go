// Package server streams simulation ticks to a renderer over a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"robosim/internal/catalog"
	"robosim/internal/config"
	"robosim/internal/interpreter"
	"robosim/internal/planner"
	"robosim/internal/runner"
	"robosim/internal/sim"
	"robosim/internal/world"
)

const (
	writeWait   = 5 * time.Second
	requestWait = 30 * time.Second
)

// Request is the first and only message a client sends. With an empty Script and
// a Goal, the planner produces the commands.
type Request struct {
	Grid   []string    `json:"grid"`
	Robot  config.File `json:"robot"`
	Script string      `json:"script,omitempty"`
	Goal   *Point      `json:"goal,omitempty"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

const (
	FrameStep  = "step"
	FrameDone  = "done"
	FrameError = "error"
)

// Frame is one server message.
type Frame struct {
	Type    string          `json:"type"`
	RunID   string          `json:"runId,omitempty"`
	Result  *sim.StepResult `json:"result,omitempty"`
	Summary *runner.Summary `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type Server struct {
	store    catalog.Store
	logger   *slog.Logger
	interval time.Duration
	origins  map[string]bool
	upgrader websocket.Upgrader
}

// New returns a server. interval is used when the robot file does not set one;
// zero streams as fast as the client reads.
func New(store catalog.Store, logger *slog.Logger, interval time.Duration) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		store:    store,
		logger:   logger,
		interval: interval,
		origins:  make(map[string]bool),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// AllowOrigins admits browser pages served from other hosts, given as
// "host:port". Same-origin and non-browser clients are always admitted.
func (s *Server) AllowOrigins(hosts ...string) *Server {
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			s.origins[strings.ToLower(h)] = true
		}
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	return host == strings.ToLower(r.Host) || s.origins[host]
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	runID := uuid.New().String()[:8]
	logger := s.logger.With("remote", r.RemoteAddr, "run", runID)

	_ = conn.SetReadDeadline(time.Now().Add(requestWait))
	var req Request
	if err := conn.ReadJSON(&req); err != nil {
		logger.Warn("read request", "err", err)
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// A read error means the client went away; stop ticking.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	engine, cmds, interval, err := s.prepare(ctx, req)
	if err != nil {
		logger.Info("rejected request", "err", err)
		_ = writeFrame(conn, Frame{Type: FrameError, RunID: runID, Error: err.Error()})
		return
	}

	sum, err := runner.Run(ctx, engine, cmds, runner.Options{
		Interval: interval,
		Logger:   logger,
		RunID:    runID,
		OnStep: func(res sim.StepResult) error {
			return writeFrame(conn, Frame{Type: FrameStep, RunID: runID, Result: &res})
		},
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("run aborted", "err", err)
		}
		return
	}
	if err := writeFrame(conn, Frame{Type: FrameDone, RunID: runID, Summary: &sum}); err != nil {
		logger.Warn("write summary", "err", err)
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(sum.Reason)),
		time.Now().Add(writeWait))
}

func (s *Server) prepare(ctx context.Context, req Request) (*sim.Engine, []sim.Command, time.Duration, error) {
	g, err := world.FromRows(req.Grid)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("grid: %w", err)
	}
	cfg, st, err := req.Robot.Resolve(ctx, s.store)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("robot: %w", err)
	}
	interval := s.interval
	if req.Robot.TickInterval != "" {
		if interval, err = req.Robot.Interval(); err != nil {
			return nil, nil, 0, fmt.Errorf("robot: %w", err)
		}
	}

	var cmds []sim.Command
	switch {
	case req.Script != "":
		if cmds, err = interpreter.Compile(req.Script); err != nil {
			return nil, nil, 0, fmt.Errorf("script: %w", err)
		}
	case req.Goal != nil:
		from := planner.Pose{X: st.X, Y: st.Y, Direction: st.Direction}
		if cmds, err = planner.Plan(g, from, req.Goal.X, req.Goal.Y); err != nil {
			return nil, nil, 0, fmt.Errorf("plan: %w", err)
		}
	default:
		return nil, nil, 0, errors.New("request needs a script or a goal")
	}

	engine, err := sim.New(cfg, g, st, req.Robot.Rand())
	if err != nil {
		return nil, nil, 0, err
	}
	return engine, cmds, interval, nil
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(f)
}
