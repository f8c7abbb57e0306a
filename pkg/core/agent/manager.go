package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"value_copilot/pkg/core/config"
	"value_copilot/pkg/core/llm"

	"go.uber.org/zap"
)

// Tasks the copilot routes to a provider.
const (
	TaskChat     = "chat"
	TaskScreener = "screener"
	TaskMemo     = "memo"
	TaskUpload   = "upload"
)

// Manager resolves which provider and options serve a task.
type Manager struct {
	mu        sync.RWMutex
	config    config.LLMConfig
	modelFor  string // provider the global model name belongs to
	providers map[string]llm.Provider
	logger    *zap.Logger
}

// NewManager registers every built-in provider. Keys are read when a request is made,
// so a provider without a key only fails when it is actually used.
func NewManager(cfg config.LLMConfig, logger *zap.Logger) *Manager {
	return NewManagerWithProviders(cfg, logger,
		llm.NewOpenAIProvider(""),
		llm.NewDeepSeekProvider(""),
		llm.NewQwenProvider(""),
		&llm.GeminiProvider{},
		&llm.ClaudeProvider{},
	)
}

// NewManagerWithProviders is NewManager with an explicit provider set (tests, mock mode).
func NewManagerWithProviders(cfg config.LLMConfig, logger *zap.Logger, providers ...llm.Provider) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		config:    cfg,
		modelFor:  cfg.ActiveProvider,
		providers: make(map[string]llm.Provider, len(providers)),
		logger:    logger.Named("agent"),
	}
	for _, p := range providers {
		m.providers[p.Name()] = p
	}
	return m
}

// GetProvider picks the provider for a task:
// 1. agent-specific override, 2. global active provider, 3. openai.
func (m *Manager) GetProvider(task string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolve(task)
}

func (m *Manager) resolve(task string) llm.Provider {
	if agentCfg, ok := m.config.Agents[task]; ok && agentCfg.Provider != "" {
		if p, ok := m.providers[agentCfg.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers[llm.ProviderOpenAI]
}

// Options returns the request options for a task. A per-agent model wins;
// the global model is only sent to the provider it was configured for,
// any other provider gets its own default.
func (m *Manager) Options(task string) llm.Options {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, opts := m.route(task)
	return opts
}

func (m *Manager) route(task string) (llm.Provider, llm.Options) {
	p := m.resolve(task)
	opts := llm.Options{
		Temperature: m.config.Temperature,
		MaxTokens:   m.config.MaxTokens,
	}
	agentCfg, ok := m.config.Agents[task]
	if ok && agentCfg.Model != "" && p != nil && (agentCfg.Provider == "" || agentCfg.Provider == p.Name()) {
		opts.Model = agentCfg.Model
	} else if p != nil && p.Name() == m.modelFor {
		opts.Model = m.config.Model
	}
	return p, opts
}

// ExecutePrompt adapts the system instructions for the chosen provider and runs the request.
// A nil onDelta means a blocking call.
func (m *Manager) ExecutePrompt(ctx context.Context, task string, messages []llm.Message, onDelta llm.DeltaFunc) (string, error) {
	m.mu.RLock()
	provider, opts := m.route(task)
	m.mu.RUnlock()
	if provider == nil {
		return "", fmt.Errorf("%w: no provider for task %s", llm.ErrUnknownProvider, task)
	}

	adapted := make([]llm.Message, len(messages))
	for i, msg := range messages {
		if msg.Role == "system" {
			msg.Content = provider.AdaptInstructions(msg.Content)
		}
		adapted[i] = msg
	}

	m.logger.Debug("executing prompt",
		zap.String("task", task),
		zap.String("provider", provider.Name()),
		zap.String("model", opts.Model),
		zap.Int("messages", len(adapted)),
		zap.Bool("stream", onDelta != nil))

	if m.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.Timeout)
		defer cancel()
	}

	if onDelta != nil {
		return provider.StreamResponse(ctx, adapted, opts, onDelta)
	}
	return provider.GenerateResponse(ctx, adapted, opts)
}

// SetGlobalProvider switches the active provider.
func (m *Manager) SetGlobalProvider(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("%w: %s", llm.ErrUnknownProvider, name)
	}
	m.config.ActiveProvider = name
	m.logger.Info("global provider switched", zap.String("provider", name))
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// Available lists registered provider names, sorted.
func (m *Manager) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
