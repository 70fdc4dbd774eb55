package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go-mingle/domain/session"
)

type Options struct {
	// ActionRate is the sustained number of actions per second per player.
	// Zero disables limiting.
	ActionRate  float64
	ActionBurst int
	// StreamBuffer is the per-stream outbound queue length.
	StreamBuffer int
	Logger       *slog.Logger
}

type Server struct {
	coordinator *session.Coordinator
	limits      session.Limits
	hub         *Hub
	limiters    *limiters
	log         *slog.Logger
}

func New(coordinator *session.Coordinator, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	every := rate.Inf
	if opts.ActionRate > 0 {
		every = rate.Limit(opts.ActionRate)
	}
	return &Server{
		coordinator: coordinator,
		limits:      coordinator.Limits(),
		hub:         NewHub(opts.StreamBuffer, logger),
		limiters:    newLimiters(every, max(opts.ActionBurst, 1)),
		log:         logger,
	}
}

// Sweep periodically releases idle per-player limiters until ctx is done.
func (s *Server) Sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiters.forget()
		}
	}
}

func (s *Server) admit(id Identity) error {
	if id.PlayerID == "" {
		return connect.NewError(connect.CodeInvalidArgument, errors.New("player_id is required"))
	}
	if !s.limiters.allow(id.PlayerID) {
		return connect.NewError(connect.CodeResourceExhausted, errors.New("too many actions, slow down"))
	}
	return nil
}

func (s *Server) Start(ctx context.Context, req *connect.Request[StartRequest]) (*connect.Response[StartResponse], error) {
	if req.Msg.PlayerID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("player_id is required"))
	}
	welcome := s.limits.Welcome(req.Msg.PlayerID)
	return connect.NewResponse(&StartResponse{
		Notification: toMessage(welcome, time.Now().Unix()),
	}), nil
}

func (s *Server) Join(ctx context.Context, req *connect.Request[JoinRequest]) (*connect.Response[ActionResponse], error) {
	if err := s.admit(req.Msg.Identity); err != nil {
		return nil, err
	}
	return connect.NewResponse(s.join(req.Msg.Identity)), nil
}

func (s *Server) Leave(ctx context.Context, req *connect.Request[LeaveRequest]) (*connect.Response[ActionResponse], error) {
	if err := s.admit(req.Msg.Identity); err != nil {
		return nil, err
	}
	return connect.NewResponse(s.leave(req.Msg.Identity)), nil
}

func (s *Server) Guess(ctx context.Context, req *connect.Request[GuessRequest]) (*connect.Response[ActionResponse], error) {
	if err := s.admit(req.Msg.Identity); err != nil {
		return nil, err
	}
	resp, err := s.guess(req.Msg.Identity, req.Msg.Value)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

// Press routes the token of a selected choice to the matching action.
func (s *Server) Press(ctx context.Context, req *connect.Request[PressRequest]) (*connect.Response[ActionResponse], error) {
	if err := s.admit(req.Msg.Identity); err != nil {
		return nil, err
	}

	id := req.Msg.Identity
	switch token := req.Msg.Token; token {
	case session.TokenJoin:
		return connect.NewResponse(s.join(id)), nil
	case session.TokenLeave:
		return connect.NewResponse(s.leave(id)), nil
	case session.TokenHelp:
		return connect.NewResponse(&ActionResponse{Outcome: "help", Reply: s.limits.Help()}), nil
	default:
		n, ok := session.ParseGuessToken(token)
		if !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown action %q", token))
		}
		resp, err := s.guess(id, n)
		if err != nil {
			return nil, err
		}
		return connect.NewResponse(resp), nil
	}
}

func (s *Server) join(id Identity) *ActionResponse {
	res := s.coordinator.Join(id.PlayerID, id.name())
	s.hub.Publish(res.Notifications)
	return &ActionResponse{
		Outcome:   res.Outcome.String(),
		Reply:     replyFor(id.PlayerID, res.Notifications),
		SessionID: res.SessionID,
	}
}

func (s *Server) leave(id Identity) *ActionResponse {
	res := s.coordinator.Leave(id.PlayerID)
	s.hub.Publish(res.Notifications)
	return &ActionResponse{
		Outcome:   res.Outcome.String(),
		Reply:     replyFor(id.PlayerID, res.Notifications),
		SessionID: res.SessionID,
	}
}

func (s *Server) guess(id Identity, value int) (*ActionResponse, error) {
	if value < s.limits.GuessMin || value > s.limits.GuessMax {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("guess %d outside [%d, %d]", value, s.limits.GuessMin, s.limits.GuessMax))
	}

	res := s.coordinator.Guess(id.PlayerID, value)
	s.hub.Publish(res.Notifications)

	return &ActionResponse{
		Outcome:   res.Outcome.String(),
		Reply:     replyFor(id.PlayerID, res.Notifications),
		SessionID: res.SessionID,
	}, nil
}

// replyFor picks the first message addressed to the acting player. The same
// message also goes out on the player's streams, which carry the full feed.
func replyFor(playerID string, notifications []session.Notification) string {
	for _, n := range notifications {
		if n.PlayerID == playerID {
			return n.Text
		}
	}
	return ""
}

func (s *Server) ListSessions(ctx context.Context, req *connect.Request[ListSessionsRequest]) (*connect.Response[ListSessionsResponse], error) {
	infos := s.coordinator.Sessions()
	resp := &ListSessionsResponse{Sessions: make([]*SessionSummary, 0, len(infos))}
	for _, info := range infos {
		names := make([]string, 0, len(info.Players))
		for _, p := range info.Players {
			names = append(names, p.Name)
		}
		resp.Sessions = append(resp.Sessions, &SessionSummary{
			SessionID: info.ID,
			State:     info.State.String(),
			Players:   names,
		})
	}
	return connect.NewResponse(resp), nil
}

// StreamNotifications pushes every message addressed to the player until the
// client goes away.
func (s *Server) StreamNotifications(
	ctx context.Context,
	req *connect.Request[StreamRequest],
	stream *connect.ServerStream[NotificationMessage],
) error {
	if req.Msg.PlayerID == "" {
		return connect.NewError(connect.CodeInvalidArgument, errors.New("player_id is required"))
	}

	ch, unsubscribe := s.hub.Subscribe(req.Msg.PlayerID)
	defer unsubscribe()
	s.log.Debug("stream opened", slog.String("player_id", req.Msg.PlayerID))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(msg); err != nil {
				s.log.Warn("stream send failed", slog.String("player_id", req.Msg.PlayerID), slog.String("error", err.Error()))
				return err
			}
		}
	}
}

func (s *Server) Ping(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[timestamppb.Timestamp], error) {
	return connect.NewResponse(timestamppb.Now()), nil
}
