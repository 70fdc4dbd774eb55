package server

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	GameServiceName   = "mingle.v1.GameService"
	HealthServiceName = "mingle.v1.HealthService"
)

const (
	GameServiceStartProcedure               = "/" + GameServiceName + "/Start"
	GameServiceJoinProcedure                = "/" + GameServiceName + "/Join"
	GameServiceLeaveProcedure               = "/" + GameServiceName + "/Leave"
	GameServiceGuessProcedure               = "/" + GameServiceName + "/Guess"
	GameServicePressProcedure               = "/" + GameServiceName + "/Press"
	GameServiceListSessionsProcedure        = "/" + GameServiceName + "/ListSessions"
	GameServiceStreamNotificationsProcedure = "/" + GameServiceName + "/StreamNotifications"
	HealthServicePingProcedure              = "/" + HealthServiceName + "/Ping"
)

type GameServiceHandler interface {
	Start(context.Context, *connect.Request[StartRequest]) (*connect.Response[StartResponse], error)
	Join(context.Context, *connect.Request[JoinRequest]) (*connect.Response[ActionResponse], error)
	Leave(context.Context, *connect.Request[LeaveRequest]) (*connect.Response[ActionResponse], error)
	Guess(context.Context, *connect.Request[GuessRequest]) (*connect.Response[ActionResponse], error)
	Press(context.Context, *connect.Request[PressRequest]) (*connect.Response[ActionResponse], error)
	ListSessions(context.Context, *connect.Request[ListSessionsRequest]) (*connect.Response[ListSessionsResponse], error)
	StreamNotifications(context.Context, *connect.Request[StreamRequest], *connect.ServerStream[NotificationMessage]) error
}

type HealthServiceHandler interface {
	Ping(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[timestamppb.Timestamp], error)
}

// NewGameServiceHandler builds an HTTP handler for the game service. The
// returned path is the prefix to mount it on.
func NewGameServiceHandler(svc GameServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	start := connect.NewUnaryHandler(GameServiceStartProcedure, svc.Start, opts...)
	join := connect.NewUnaryHandler(GameServiceJoinProcedure, svc.Join, opts...)
	leave := connect.NewUnaryHandler(GameServiceLeaveProcedure, svc.Leave, opts...)
	guess := connect.NewUnaryHandler(GameServiceGuessProcedure, svc.Guess, opts...)
	press := connect.NewUnaryHandler(GameServicePressProcedure, svc.Press, opts...)
	list := connect.NewUnaryHandler(GameServiceListSessionsProcedure, svc.ListSessions, opts...)
	stream := connect.NewServerStreamHandler(GameServiceStreamNotificationsProcedure, svc.StreamNotifications, opts...)

	return "/" + GameServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GameServiceStartProcedure:
			start.ServeHTTP(w, r)
		case GameServiceJoinProcedure:
			join.ServeHTTP(w, r)
		case GameServiceLeaveProcedure:
			leave.ServeHTTP(w, r)
		case GameServiceGuessProcedure:
			guess.ServeHTTP(w, r)
		case GameServicePressProcedure:
			press.ServeHTTP(w, r)
		case GameServiceListSessionsProcedure:
			list.ServeHTTP(w, r)
		case GameServiceStreamNotificationsProcedure:
			stream.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// NewHealthServiceHandler serves Ping with connect's default protobuf codecs.
func NewHealthServiceHandler(svc HealthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	ping := connect.NewUnaryHandler(HealthServicePingProcedure, svc.Ping, opts...)
	return "/" + HealthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case HealthServicePingProcedure:
			ping.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
