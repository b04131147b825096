package server

import (
	"encoding/json"
	"net/http"
	netrpc "net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/townserver/logger"
	"github.com/wfunc/townserver/models"
	"github.com/wfunc/townserver/monitor"
	"github.com/wfunc/townserver/network"
	"github.com/wfunc/townserver/player"
	"github.com/wfunc/townserver/rpc"
	"github.com/wfunc/townserver/session"
	"github.com/wfunc/townserver/timer"
	"github.com/wfunc/townserver/town"
)

// TownServer is the websocket front door: it upgrades connections, joins
// them to towns and pumps their packets into the town state machines.
type TownServer struct {
	addr           string
	upgrader       websocket.Upgrader
	townManager    *town.Manager
	sessionManager *session.Manager
	monitor        *monitor.Monitor
	rpcServer      *rpc.Server
	timers         *timer.Manager
	idleTimeout    time.Duration
	shutdownChan   chan struct{}
}

func NewTownServer(addr, rpcAddr string, townManager *town.Manager, sessionManager *session.Manager, mon *monitor.Monitor, idleTimeout time.Duration) *TownServer {
	s := &TownServer{
		addr:           addr,
		townManager:    townManager,
		sessionManager: sessionManager,
		monitor:        mon,
		timers:         timer.NewManager(),
		idleTimeout:    idleTimeout,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	rpcServer, err := rpc.NewServer(rpcAddr)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	townService := rpc.NewTownService(townManager)
	netrpc.Register(townService)

	return s
}

func (s *TownServer) Start() error {
	go s.rpcServer.Start()

	if s.idleTimeout > 0 {
		s.timers.Add(s.idleTimeout, s.idleTimeout/2, s.reapIdleSessions)
	}
	s.timers.Add(0, 15*time.Second, func() {
		s.monitor.SetActiveTowns(s.townManager.TownCount())
	})

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Town server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *TownServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

// reapIdleSessions closes sockets that have been quiet past the timeout.
// Closing unblocks the read loop, which performs the usual cleanup.
func (s *TownServer) reapIdleSessions() {
	for _, sess := range s.sessionManager.GetIdle(s.idleTimeout) {
		logger.Log.Infof("Closing idle session %s", sess.GetID())
		sess.Close()
	}
}

func (s *TownServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	townID := r.URL.Query().Get("townID")
	userName := r.URL.Query().Get("userName")
	if townID == "" || userName == "" {
		http.Error(w, "missing townID or userName", http.StatusBadRequest)
		return
	}

	currentTown, exists := s.townManager.GetTown(townID)
	if !exists {
		http.Error(w, "no such town", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn, currentTown, userName)
}

func (s *TownServer) handleConnection(conn *websocket.Conn, currentTown *town.Town, userName string) {
	wsConn := network.NewWSConnection(conn)
	if s.idleTimeout > 0 {
		wsConn.SetHeartbeat(s.idleTimeout)
	}
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)

	p, err := currentTown.AddPlayer(userName, sess)
	if err != nil {
		logger.Log.Warnf("Rejecting connection to town %s: %v", currentTown.ID(), err)
		s.sessionManager.Remove(sess.GetID())
		wsConn.Close()
		return
	}

	s.monitor.IncOnlinePlayers()
	logger.Log.Infof("Player %s (%s) joined town %s from %s", p.ID, userName, currentTown.ID(), wsConn.RemoteAddr())

	defer func() {
		logger.Log.Infof("Player %s left town %s", p.ID, currentTown.ID())
		currentTown.RemovePlayer(p, sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.monitor.IncMessagesReceived()
			s.handlePacket(currentTown, p, sess, packet)
		}
	}
}

func (s *TownServer) handlePacket(currentTown *town.Town, p *player.Player, sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()

	case network.MsgTypePlayerMovement:
		var loc models.PlayerLocation
		if err := json.Unmarshal(packet.Data, &loc); err != nil {
			logger.Log.Warnf("Bad movement payload from session %s: %v", sess.GetID(), err)
			return
		}
		currentTown.UpdatePlayerLocation(p, loc)

	case network.MsgTypeChatMessage:
		var msg models.ChatMessage
		if err := json.Unmarshal(packet.Data, &msg); err != nil {
			logger.Log.Warnf("Bad chat payload from session %s: %v", sess.GetID(), err)
			return
		}
		currentTown.HandleChatMessage(msg)

	case network.MsgTypeInteractableUpdate:
		var m models.Interactable
		if err := json.Unmarshal(packet.Data, &m); err != nil {
			logger.Log.Warnf("Bad interactable update from session %s: %v", sess.GetID(), err)
			return
		}
		currentTown.HandleInteractableUpdate(m)

	case network.MsgTypeInteractableCommand:
		var cmd models.InteractableCommand
		if err := json.Unmarshal(packet.Data, &cmd); err != nil {
			logger.Log.Warnf("Bad command payload from session %s: %v", sess.GetID(), err)
			return
		}
		start := time.Now()
		currentTown.HandleCommand(p, sess, cmd)
		s.monitor.ObserveCommandLatency(time.Since(start))

	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}
