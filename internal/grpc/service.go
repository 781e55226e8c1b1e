// Package grpc serves the draft ledger over gRPC. Messages are
// google.protobuf.Struct documents carrying the same JSON shapes as the
// HTTP API, so no generated code is needed.
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "auction.DraftService"

// DraftServiceServer is the server API for auction.DraftService.
type DraftServiceServer interface {
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	RecordPick(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UndoPick(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartDraft(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ResetDraft(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetRecommendations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StreamEvents(*emptypb.Empty, grpc.ServerStream) error
}

func unary[Req proto.Message](name string, newReq func() Req, call func(DraftServiceServer, context.Context, Req) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DraftServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(DraftServiceServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func newEmpty() *emptypb.Empty    { return new(emptypb.Empty) }
func newStruct() *structpb.Struct { return new(structpb.Struct) }

// ServiceDesc describes auction.DraftService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DraftServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetState", newEmpty, DraftServiceServer.GetState),
		unary("RecordPick", newStruct, DraftServiceServer.RecordPick),
		unary("UndoPick", newStruct, DraftServiceServer.UndoPick),
		unary("StartDraft", newEmpty, DraftServiceServer.StartDraft),
		unary("ResetDraft", newEmpty, DraftServiceServer.ResetDraft),
		unary("GetRecommendations", newStruct, DraftServiceServer.GetRecommendations),
	},
	Streams: []grpc.StreamDesc{{
		StreamName: "StreamEvents",
		Handler: func(srv interface{}, stream grpc.ServerStream) error {
			in := new(emptypb.Empty)
			if err := stream.RecvMsg(in); err != nil {
				return err
			}
			return srv.(DraftServiceServer).StreamEvents(in, stream)
		},
		ServerStreams: true,
	}},
	Metadata: "auction/draft.proto",
}

func RegisterDraftServiceServer(s grpc.ServiceRegistrar, srv DraftServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls auction.DraftService on a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in proto.Message) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetState(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetState", &emptypb.Empty{})
}

func (c *Client) RecordPick(ctx context.Context, playerID, teamID string, price int) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"player_id": playerID,
		"team_id":   teamID,
		"price":     price,
	})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "RecordPick", req)
}

func (c *Client) UndoPick(ctx context.Context, pickID string) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"pick_id": pickID})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "UndoPick", req)
}

func (c *Client) StartDraft(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "StartDraft", &emptypb.Empty{})
}

func (c *Client) ResetDraft(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "ResetDraft", &emptypb.Empty{})
}

func (c *Client) GetRecommendations(ctx context.Context, teamID string) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"team_id": teamID})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "GetRecommendations", req)
}

// EventStream receives events from StreamEvents.
type EventStream struct {
	grpc.ClientStream
}

func (s *EventStream) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := s.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Client) StreamEvents(ctx context.Context) (*EventStream, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/StreamEvents")
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &EventStream{stream}, nil
}
