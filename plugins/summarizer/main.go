package main

import (
	"context"

	"github.com/hashicorp/go-plugin"

	summaryrpc "meetnote/internal/modules/summary/adapter/out/rpc"
	"meetnote/internal/modules/summary/service"
	"meetnote/internal/platform/random"
)

type server struct {
	generator *service.Generator
}

func (s *server) GetMetadata(_ context.Context, _ *summaryrpc.Empty) (*summaryrpc.Metadata, error) {
	return &summaryrpc.Metadata{Name: "summarizer", Version: "1.0.0"}, nil
}

func (s *server) Generate(_ context.Context, _ *summaryrpc.GenerateRequest) (*summaryrpc.GenerateResponse, error) {
	summary := s.generator.Summary()
	actions := make([]summaryrpc.ActionItem, 0, len(summary.ActionItems))
	for _, a := range summary.ActionItems {
		actions = append(actions, summaryrpc.ActionItem{Task: a.Task, Assignee: a.Assignee, DueDate: a.DueDate})
	}
	return &summaryrpc.GenerateResponse{
		Title:             summary.Title,
		KeyPoints:         summary.KeyPoints,
		ActionItems:       actions,
		Decisions:         summary.Decisions,
		Sentiment:         summary.Sentiment,
		ConfidencePercent: summary.ConfidencePercent,
	}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: summaryrpc.HandshakeConfig,
		Plugins:         summaryrpc.PluginMap(&server{generator: service.NewGenerator(random.NewSystem())}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
