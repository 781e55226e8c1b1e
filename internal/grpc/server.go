package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/auction-draft/internal/draft"
	"github.com/Billy-Davies-2/auction-draft/internal/league"
	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/models"
	"github.com/Billy-Davies-2/auction-draft/internal/pool"
	"github.com/Billy-Davies-2/auction-draft/internal/pubsub"
)

// Broker is the subscription side of the event hub.
type Broker interface {
	Subscribe() chan pubsub.Event
	Unsubscribe(chan pubsub.Event)
}

// Server implements DraftServiceServer on top of the draft service.
type Server struct {
	svc    *draft.Service
	broker Broker
}

func NewServer(svc *draft.Service, broker Broker) *Server {
	return &Server{svc: svc, broker: broker}
}

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrPersistenceMissing):
		code = codes.NotFound
	case errors.Is(err, models.ErrInvalidTransition):
		code = codes.FailedPrecondition
	case errors.Is(err, draft.ErrInvalidInput),
		errors.Is(err, pool.ErrInvalidPlayer),
		errors.Is(err, league.ErrInvalidKeeper):
		code = codes.InvalidArgument
	}
	if code == codes.Internal {
		logger.Error("gRPC: request failed", "error", err)
	}
	return status.Error(code, err.Error())
}

// toStruct converts a JSON-tagged value into a Struct.
func toStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func stringField(req *structpb.Struct, key string, required bool) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		if required {
			return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
		}
		return "", nil
	}
	str, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", key)
	}
	if required && str.StringValue == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return str.StringValue, nil
}

func intField(req *structpb.Struct, key string) (int, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", key)
	}
	return int(n.NumberValue), nil
}

func (s *Server) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	logger.Debug("gRPC: Getting draft state")
	return toStruct(s.svc.State())
}

func (s *Server) RecordPick(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	playerID, err := stringField(req, "player_id", true)
	if err != nil {
		return nil, err
	}
	teamID, err := stringField(req, "team_id", true)
	if err != nil {
		return nil, err
	}
	price, err := intField(req, "price")
	if err != nil {
		return nil, err
	}
	logger.Info("gRPC: Recording pick", "player_id", playerID, "team_id", teamID, "price", price)
	pick, rate, err := s.svc.RecordPick(playerID, teamID, price)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{
		"pick":           pick,
		"inflation_rate": rate,
	})
}

func (s *Server) UndoPick(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pickID, err := stringField(req, "pick_id", true)
	if err != nil {
		return nil, err
	}
	pick, rate, err := s.svc.UndoPick(pickID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{
		"undone":         pick,
		"inflation_rate": rate,
	})
}

func (s *Server) StartDraft(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.svc.StartDraft())
}

func (s *Server) ResetDraft(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	logger.Info("gRPC: Resetting draft")
	return toStruct(s.svc.ResetDraft())
}

// GetRecommendations takes an optional team_id; empty means the user's team.
func (s *Server) GetRecommendations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	teamID, err := stringField(req, "team_id", false)
	if err != nil {
		return nil, err
	}
	recs, err := s.svc.Recommendations(teamID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"recommendations": recs})
}

// StreamEvents forwards every published draft event until the client leaves.
func (s *Server) StreamEvents(_ *emptypb.Empty, stream grpc.ServerStream) error {
	logger.Debug("gRPC: New client connected to event stream")
	ch := s.broker.Subscribe()
	defer s.broker.Unsubscribe(ch)

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			msg, err := toStruct(ev)
			if err != nil {
				return err
			}
			if err := stream.SendMsg(msg); err != nil {
				logger.Error("gRPC: Failed to send event to stream", "error", err)
				return err
			}
		case <-stream.Context().Done():
			logger.Debug("gRPC: Client disconnected from event stream")
			return nil
		}
	}
}

// LoggingInterceptor logs each unary call with its outcome code.
func LoggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	logger.Debug("gRPC call", "method", info.FullMethod, "code", status.Code(err).String())
	return resp, err
}
