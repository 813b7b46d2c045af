package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/profparedes/theme-tier-server/broadcast"
	"github.com/profparedes/theme-tier-server/game"
	"github.com/profparedes/theme-tier-server/logger"
	"github.com/profparedes/theme-tier-server/monitor"
	"github.com/profparedes/theme-tier-server/network"
	"github.com/profparedes/theme-tier-server/room"
	"github.com/profparedes/theme-tier-server/session"
	"github.com/profparedes/theme-tier-server/timer"
)

type LobbyServer struct {
	addr           string
	upgrader       websocket.Upgrader
	store          *room.Store
	sessionManager *session.Manager
	emitter        *broadcast.RoomEmitter
	scheduler      *timer.Scheduler
	controller     *game.Controller
	mon            *monitor.Monitor
	shutdownChan   chan struct{}
}

func NewLobbyServer(addr string, mon *monitor.Monitor) *LobbyServer {
	s := &LobbyServer{
		addr:           addr,
		store:          room.NewStore(),
		sessionManager: session.NewManager(),
		scheduler:      timer.NewScheduler(),
		mon:            mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	s.emitter = broadcast.NewRoomEmitter(s.sessionManager)

	var stats game.Stats
	if mon != nil {
		stats = mon
	}
	s.controller = game.NewController(s.store, s.emitter, s.scheduler, stats)

	return s
}

// readTimeout bounds how long a connection may stay silent; keep_alive
// traffic (or any other inbound event) extends it.
const readTimeout = 5 * time.Minute

func (s *LobbyServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

func (s *LobbyServer) Start() error {
	logger.Log.Infof("Lobby server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.routes())
}

func (s *LobbyServer) Shutdown() {
	close(s.shutdownChan)
	s.scheduler.Stop()
}

func (s *LobbyServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *LobbyServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.mon != nil {
		s.mon.IncParticipantsOnline()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.controller.HandleDisconnect(sess.GetID())
		s.emitter.LeaveAllGroups(sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		if s.mon != nil {
			s.mon.DecParticipantsOnline()
		}
		wsConn.Close()
	}()

	wsConn.SetReadDeadlineIn(readTimeout)

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			env, err := wsConn.ReadEvent()
			if err != nil {
				return
			}
			wsConn.SetReadDeadlineIn(readTimeout)
			sess.Touch()
			s.controller.Dispatch(sess.GetID(), env.Event, env.Data)
		}
	}
}
