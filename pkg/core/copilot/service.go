// Package copilot runs the conversational tasks of the value investing
// assistant: free chat, the Buffett screener, investment memos and document
// summaries. Every operation works on an explicit session and records both
// sides of the exchange in its history.
package copilot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"value_copilot/pkg/core/agent"
	"value_copilot/pkg/core/config"
	"value_copilot/pkg/core/conversation"
	"value_copilot/pkg/core/ingest"
	"value_copilot/pkg/core/llm"
	"value_copilot/pkg/core/prompt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrRateLimited   = errors.New("too many requests for this session")
	ErrEmptyDocument = errors.New("no text could be extracted from the document")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUpstream      = errors.New("language model request failed")
)

// Settings are the knobs the service reads from configuration.
type Settings struct {
	HistoryPairs      int
	ExcerptLength     int
	RequestsPerSecond float64
	Burst             int
}

// SettingsFromConfig picks the service settings out of the application config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		HistoryPairs:      cfg.LLM.HistoryPairs,
		ExcerptLength:     cfg.Upload.ExcerptLength,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}
}

// Service is safe for concurrent use; callers serialize access to one session.
type Service struct {
	manager  *agent.Manager
	prompts  *prompt.Registry
	settings Settings
	logger   *zap.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewService(manager *agent.Manager, prompts *prompt.Registry, settings Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.HistoryPairs <= 0 {
		settings.HistoryPairs = 18
	}
	if settings.ExcerptLength <= 0 {
		settings.ExcerptLength = 8000
	}
	return &Service{
		manager:  manager,
		prompts:  prompts,
		settings: settings,
		logger:   logger.Named("copilot"),
		limiters: make(map[string]*rate.Limiter),
	}
}

// ChatResult is a plain assistant reply.
type ChatResult struct {
	Reply string `json:"reply"`
}

type ScreenerResult struct {
	Title  string          `json:"title"`
	Reply  string          `json:"reply"`
	Record *ScreenerRecord `json:"record"`
}

type MemoResult struct {
	Title  string      `json:"title"`
	Reply  string      `json:"reply"`
	Record *MemoRecord `json:"record"`
}

type UploadResult struct {
	Title          string        `json:"title"`
	Reply          string        `json:"reply"`
	Record         *UploadRecord `json:"record"`
	Filename       string        `json:"filename"`
	ExtractedChars int           `json:"extracted_chars"`
	Truncated      bool          `json:"truncated"`
}

// Chat sends a free-form question.
func (s *Service) Chat(ctx context.Context, session *conversation.Session, text string) (ChatResult, error) {
	return s.ChatStream(ctx, session, text, nil)
}

// ChatStream is Chat with incremental delivery of the reply through onDelta.
func (s *Service) ChatStream(ctx context.Context, session *conversation.Session, text string, onDelta llm.DeltaFunc) (ChatResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatResult{}, fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}
	reply, err := s.ask(ctx, session, agent.TaskChat, text, onDelta)
	if err != nil {
		return ChatResult{}, err
	}
	return ChatResult{Reply: reply}, nil
}

// Screener checks one company against the value investing checklist.
func (s *Service) Screener(ctx context.Context, session *conversation.Session, ticker, notes string) (ScreenerResult, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return ScreenerResult{}, fmt.Errorf("%w: ticker is required", ErrInvalidInput)
	}

	userPrompt, err := s.prompts.Render(prompt.PromptIDs.TaskScreener, prompt.NewContext().
		Set("Ticker", ticker).
		Set("Notes", strings.TrimSpace(notes)).
		Set("Profile", session.Profile.Summary()).
		Set("ToneLine", session.Tone.Line()))
	if err != nil {
		return ScreenerResult{}, fmt.Errorf("render screener prompt: %w", err)
	}

	reply, err := s.ask(ctx, session, agent.TaskScreener, userPrompt, nil)
	if err != nil {
		return ScreenerResult{}, err
	}
	record := parseScreener(reply)
	s.logger.Info("screener completed",
		zap.String("session", session.ID),
		zap.String("ticker", ticker),
		zap.Bool("structured", record != nil))

	return ScreenerResult{Title: "Buffett Screener: " + ticker, Reply: reply, Record: record}, nil
}

// Memo writes an investment memo for a company.
func (s *Service) Memo(ctx context.Context, session *conversation.Session, company, hints string) (MemoResult, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return MemoResult{}, fmt.Errorf("%w: company is required", ErrInvalidInput)
	}

	userPrompt, err := s.prompts.Render(prompt.PromptIDs.TaskMemo, prompt.NewContext().
		Set("Company", company).
		Set("Hints", strings.TrimSpace(hints)).
		Set("Profile", session.Profile.Summary()).
		Set("ToneLine", session.Tone.Line()))
	if err != nil {
		return MemoResult{}, fmt.Errorf("render memo prompt: %w", err)
	}

	reply, err := s.ask(ctx, session, agent.TaskMemo, userPrompt, nil)
	if err != nil {
		return MemoResult{}, err
	}
	record := parseMemo(reply)
	s.logger.Info("memo completed",
		zap.String("session", session.ID),
		zap.String("company", company),
		zap.Bool("structured", record != nil))

	return MemoResult{Title: "Investment Memo: " + company, Reply: reply, Record: record}, nil
}

// SummarizeUpload extracts the document text and asks for a structured summary.
// Nothing is sent to the model, and nothing is added to history, when no text is found.
func (s *Service) SummarizeUpload(ctx context.Context, session *conversation.Session, filename, contentType string, data []byte) (UploadResult, error) {
	text, err := ingest.ExtractText(filename, contentType, data)
	if err != nil {
		return UploadResult{}, err
	}
	excerpt := ingest.Excerpt(text, s.settings.ExcerptLength)
	if strings.TrimSpace(excerpt) == "" {
		s.logger.Warn("upload yielded no text", zap.String("session", session.ID), zap.String("file", filename))
		return UploadResult{}, ErrEmptyDocument
	}

	userPrompt, err := s.prompts.Render(prompt.PromptIDs.TaskUploadSummary, prompt.NewContext().
		Set("Excerpt", excerpt))
	if err != nil {
		return UploadResult{}, fmt.Errorf("render upload prompt: %w", err)
	}

	reply, err := s.ask(ctx, session, agent.TaskUpload, userPrompt, nil)
	if err != nil {
		return UploadResult{}, err
	}

	chars := utf8.RuneCountInString(text)
	record := parseUpload(reply)
	s.logger.Info("upload summarized",
		zap.String("session", session.ID),
		zap.String("file", filename),
		zap.Int("chars", chars),
		zap.Bool("structured", record != nil))

	return UploadResult{
		Title:          "Document Summary: " + filename,
		Reply:          reply,
		Record:         record,
		Filename:       filename,
		ExtractedChars: chars,
		Truncated:      chars > s.settings.ExcerptLength,
	}, nil
}

// ask records the user turn, calls the model with the trimmed history and
// records the reply. A failed call leaves the user turn in history.
func (s *Service) ask(ctx context.Context, session *conversation.Session, task, userPrompt string, onDelta llm.DeltaFunc) (string, error) {
	if !s.limiter(session.ID).Allow() {
		return "", ErrRateLimited
	}

	system, err := s.prompts.GetSystemPrompt(prompt.PromptIDs.SystemValueInvestor)
	if err != nil {
		return "", fmt.Errorf("load system prompt: %w", err)
	}

	session.History.Append(conversation.RoleUser, userPrompt)
	session.Touch()

	messages := prompt.BuildMessages(system, session.Tone.Line(), &session.History, s.settings.HistoryPairs)

	start := time.Now()
	reply, err := s.manager.ExecutePrompt(ctx, task, messages, onDelta)
	if err != nil {
		s.logger.Error("model call failed",
			zap.String("session", session.ID),
			zap.String("task", task),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("%w: %s: %w", ErrUpstream, task, err)
	}

	session.History.Append(conversation.RoleAssistant, reply)
	session.Touch()

	s.logger.Debug("model replied",
		zap.String("session", session.ID),
		zap.String("task", task),
		zap.Int("reply_chars", utf8.RuneCountInString(reply)),
		zap.Duration("elapsed", time.Since(start)))
	return reply, nil
}

func (s *Service) limiter(sessionID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[sessionID]
	if !ok {
		limit := rate.Inf
		if s.settings.RequestsPerSecond > 0 {
			limit = rate.Limit(s.settings.RequestsPerSecond)
		}
		burst := s.settings.Burst
		if burst <= 0 {
			burst = 1
		}
		l = rate.NewLimiter(limit, burst)
		s.limiters[sessionID] = l
	}
	return l
}

// Forget drops the rate limiter of a deleted session.
func (s *Service) Forget(sessionID string) {
	s.mu.Lock()
	delete(s.limiters, sessionID)
	s.mu.Unlock()
}

// Manager exposes the provider manager for the config endpoints.
func (s *Service) Manager() *agent.Manager {
	return s.manager
}

// Prompts exposes the prompt registry.
func (s *Service) Prompts() *prompt.Registry {
	return s.prompts
}
