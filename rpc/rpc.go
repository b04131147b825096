package rpc

import (
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/townserver/logger"
	"github.com/wfunc/townserver/models"
	"github.com/wfunc/townserver/town"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services are registered by the caller
// through net/rpc before Start.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

var ErrInvalidSessionToken = errors.New("invalid session token")

// TownService exposes the town administration surface over net/rpc: town
// CRUD gated by the per-town update password, and area claims gated by a
// player session token.
type TownService struct {
	townManager *town.Manager
}

func NewTownService(m *town.Manager) *TownService {
	return &TownService{townManager: m}
}

type CreateTownArgs struct {
	FriendlyName     string
	IsPubliclyListed bool
}

type CreateTownReply struct {
	TownID         string
	UpdatePassword string
}

func (ts *TownService) CreateTown(args *CreateTownArgs, reply *CreateTownReply) error {
	t, err := ts.townManager.CreateTown(args.FriendlyName, args.IsPubliclyListed)
	if err != nil {
		return err
	}
	reply.TownID = t.ID()
	reply.UpdatePassword = t.UpdatePassword()
	return nil
}

type ListTownsArgs struct{}

type ListTownsReply struct {
	Towns []town.Summary
}

func (ts *TownService) ListTowns(args *ListTownsArgs, reply *ListTownsReply) error {
	reply.Towns = ts.townManager.ListPublicTowns()
	return nil
}

type UpdateTownArgs struct {
	TownID           string
	UpdatePassword   string
	FriendlyName     *string
	IsPubliclyListed *bool
}

type UpdateTownReply struct{}

func (ts *TownService) UpdateTown(args *UpdateTownArgs, reply *UpdateTownReply) error {
	return ts.townManager.UpdateTown(args.TownID, args.UpdatePassword, args.FriendlyName, args.IsPubliclyListed)
}

type DeleteTownArgs struct {
	TownID         string
	UpdatePassword string
}

type DeleteTownReply struct{}

func (ts *TownService) DeleteTown(args *DeleteTownArgs, reply *DeleteTownReply) error {
	return ts.townManager.DeleteTown(args.TownID, args.UpdatePassword)
}

// ClaimAreaArgs names an unclaimed area slot and the payload to claim it
// with. SessionToken must belong to a player currently in the town.
type ClaimAreaArgs struct {
	TownID       string
	SessionToken string
	AreaID       string
	Topic        string
	Poll         string
	Video        string
	IsPlaying    bool
	ElapsedSec   float64
}

type ClaimAreaReply struct{}

func (ts *TownService) CreateConversationArea(args *ClaimAreaArgs, reply *ClaimAreaReply) error {
	t, err := ts.authorize(args)
	if err != nil {
		return err
	}
	if !t.AddConversationArea(models.Interactable{ID: args.AreaID, Topic: args.Topic}) {
		return models.NewInvalidParameters("unable to create conversation area")
	}
	return nil
}

func (ts *TownService) CreateVotingArea(args *ClaimAreaArgs, reply *ClaimAreaReply) error {
	t, err := ts.authorize(args)
	if err != nil {
		return err
	}
	if !t.AddVotingArea(models.Interactable{ID: args.AreaID, Poll: args.Poll}) {
		return models.NewInvalidParameters("unable to create voting area")
	}
	return nil
}

func (ts *TownService) CreateViewingArea(args *ClaimAreaArgs, reply *ClaimAreaReply) error {
	t, err := ts.authorize(args)
	if err != nil {
		return err
	}
	m := models.Interactable{
		ID:             args.AreaID,
		Video:          args.Video,
		IsPlaying:      args.IsPlaying,
		ElapsedTimeSec: args.ElapsedSec,
	}
	if !t.AddViewingArea(m) {
		return models.NewInvalidParameters("unable to create viewing area")
	}
	return nil
}

func (ts *TownService) authorize(args *ClaimAreaArgs) (*town.Town, error) {
	t, exists := ts.townManager.GetTown(args.TownID)
	if !exists {
		return nil, town.ErrTownNotFound
	}
	if _, ok := t.GetPlayerBySessionToken(args.SessionToken); !ok {
		return nil, ErrInvalidSessionToken
	}
	return t, nil
}
