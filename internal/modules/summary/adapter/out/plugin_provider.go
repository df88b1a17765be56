package out

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	summaryrpc "meetnote/internal/modules/summary/adapter/out/rpc"
	"meetnote/internal/modules/summary/domain"
	summaryout "meetnote/internal/modules/summary/port/out"
)

// Generate runs inside serialized scheduler callbacks, so a call is kept
// short and the process is launched up front by Start.
const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 1500 * time.Millisecond
)

// PluginProvider generates summaries through an external summarizer binary.
// The plugin process is started on first use and reused until Close.
type PluginProvider struct {
	binary string
	logger hclog.Logger

	mu     sync.Mutex
	client *plugin.Client
	rpc    summaryrpc.SummarizerClient
	name   string
}

func NewPluginProvider(binary string, logger hclog.Logger) *PluginProvider {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PluginProvider{binary: binary, logger: logger, name: "plugin:" + binary}
}

var _ summaryout.Provider = (*PluginProvider)(nil)

func (p *PluginProvider) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

func (p *PluginProvider) Generate(ctx context.Context, platform string) (domain.Summary, error) {
	client, err := p.connect(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()

	resp, err := client.Generate(callCtx, &summaryrpc.GenerateRequest{Platform: platform})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.Summary{}, fmt.Errorf("summarizer timed out: %w", err)
		}
		p.reset()
		return domain.Summary{}, fmt.Errorf("generate summary: %w", err)
	}
	actions := make([]domain.ActionItem, 0, len(resp.ActionItems))
	for _, a := range resp.ActionItems {
		actions = append(actions, domain.ActionItem{Task: a.Task, Assignee: a.Assignee, DueDate: a.DueDate})
	}
	return domain.Summary{
		Title:             resp.Title,
		KeyPoints:         resp.KeyPoints,
		ActionItems:       actions,
		Decisions:         resp.Decisions,
		Sentiment:         resp.Sentiment,
		ConfidencePercent: resp.ConfidencePercent,
	}, nil
}

// Start launches the plugin process ahead of the first Generate.
func (p *PluginProvider) Start(ctx context.Context) error {
	_, err := p.connect(ctx)
	return err
}

// Close stops the plugin process if one is running.
func (p *PluginProvider) Close() {
	p.reset()
}

func (p *PluginProvider) connect(ctx context.Context) (summaryrpc.SummarizerClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rpc != nil {
		return p.rpc, nil
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  summaryrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          summaryrpc.PluginMap(nil),
		Cmd:              exec.Command(p.binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           p.logger,
	})
	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start summarizer plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(summaryrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense summarizer plugin: %w", err)
	}
	typed, ok := raw.(summaryrpc.SummarizerClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("summarizer rpc client type mismatch")
	}

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := typed.GetMetadata(callCtx)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("get summarizer metadata: %w", err)
	}
	p.name = fmt.Sprintf("plugin:%s@%s", meta.Name, meta.Version)
	p.client = client
	p.rpc = typed
	p.logger.Debug("summarizer plugin started", "name", meta.Name, "version", meta.Version)
	return typed, nil
}

func (p *PluginProvider) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Kill()
	}
	p.client = nil
	p.rpc = nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
