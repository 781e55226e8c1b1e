package fuzz

import (
	"context"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	grpcserver "github.com/Billy-Davies-2/auction-draft/internal/grpc"
)

// FuzzGRPCRecordPick fuzzes RecordPick with arbitrary field values.
func FuzzGRPCRecordPick(f *testing.F) {
	f.Add("1", "team_1", 40.0)
	f.Add("invalid", "team_999", 3.5)
	f.Add("", "", -1.0)
	f.Add("5", "team_2", 1e18)

	f.Fuzz(func(t *testing.T, playerID, teamID string, price float64) {
		svc, ps := newService(t)
		server := grpcserver.NewServer(svc, ps)
		req := &structpb.Struct{Fields: map[string]*structpb.Value{
			"player_id": structpb.NewStringValue(playerID),
			"team_id":   structpb.NewStringValue(teamID),
			"price":     structpb.NewNumberValue(price),
		}}
		_, _ = server.RecordPick(context.Background(), req)
		checkLedger(t, svc)
	})
}

// FuzzGRPCUndoPick records one pick and then undoes arbitrary ids.
func FuzzGRPCUndoPick(f *testing.F) {
	f.Add("abcd1234")
	f.Add("")

	f.Fuzz(func(t *testing.T, pickID string) {
		svc, ps := newService(t)
		server := grpcserver.NewServer(svc, ps)
		if _, _, err := svc.RecordPick("2", "team_1", 10); err != nil {
			t.Fatalf("seed pick: %v", err)
		}
		req := &structpb.Struct{Fields: map[string]*structpb.Value{
			"pick_id": structpb.NewStringValue(pickID),
		}}
		_, _ = server.UndoPick(context.Background(), req)
		checkLedger(t, svc)
	})
}

// FuzzGRPCGetRecommendations fuzzes the team lookup.
func FuzzGRPCGetRecommendations(f *testing.F) {
	f.Add("team_1")
	f.Add("")
	f.Add("team_-1")

	f.Fuzz(func(t *testing.T, teamID string) {
		svc, ps := newService(t)
		server := grpcserver.NewServer(svc, ps)
		req := &structpb.Struct{Fields: map[string]*structpb.Value{
			"team_id": structpb.NewStringValue(teamID),
		}}
		_, _ = server.GetRecommendations(context.Background(), req)
	})
}
