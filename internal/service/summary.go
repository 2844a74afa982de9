package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/autodocx/relay-api/internal/cache"
	"github.com/autodocx/relay-api/internal/llm"
	"github.com/autodocx/relay-api/internal/model"
	"github.com/autodocx/relay-api/pkg/logger"
	"github.com/autodocx/relay-api/pkg/metrics"
)

const summaryPrompt = `You are a senior software engineer. Summarize the following code by explaining:
- What it does
- Its key components and structure
- Any notable logic, libraries, or patterns used

Be clear, concise, and provide the summary in **Markdown** format:

`

// SourceFetcher resolves raw-source links.
type SourceFetcher interface {
	Matches(input string) bool
	Fetch(ctx context.Context, url string) (string, error)
}

// SummaryConfig holds SummaryService settings.
type SummaryConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

// SummaryService turns code into a markdown summary.
type SummaryService struct {
	generator llm.Client
	fetcher   SourceFetcher
	cache     cache.Cache
	cfg       SummaryConfig
	logger    *logger.Logger
}

// NewSummaryService creates a summarizer relay. generator may be nil when
// no provider is configured; cache may be nil to disable caching.
func NewSummaryService(generator llm.Client, fetcher SourceFetcher, c cache.Cache, cfg SummaryConfig, log *logger.Logger) *SummaryService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &SummaryService{
		generator: generator,
		fetcher:   fetcher,
		cache:     c,
		cfg:       cfg,
		logger:    log,
	}
}

// BuildSummaryPrompt embeds code into the summarization instructions.
func BuildSummaryPrompt(code string) string {
	return summaryPrompt + code
}

// Summarize returns generated markdown for req.Code, fetching it first
// when it is a raw-source link. A missing provider fails before any
// outbound call.
func (s *SummaryService) Summarize(ctx context.Context, req *model.SummarizeRequest) (*model.SummarizeResponse, error) {
	if req.Code == "" {
		return nil, newError(ErrInvalidInput, "Code input is required.", nil)
	}

	if s.generator == nil {
		s.logger.Error("summarizer provider is not configured")
		return nil, newError(ErrNotConfigured, "Server configuration error", nil)
	}
	provider := s.generator.Name()

	code := req.Code
	if s.fetcher != nil && s.fetcher.Matches(code) {
		fetched, err := s.fetcher.Fetch(ctx, code)
		if err != nil {
			s.logger.Warn("failed to fetch source link", zap.String("url", code), zap.Error(err))
			return nil, newError(ErrInvalidInput, "Could not fetch the file from the given URL.", err)
		}
		code = fetched
	}

	prompt := BuildSummaryPrompt(code)
	key := cacheKey(provider, prompt)

	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("summary cache lookup failed", zap.Error(err))
		} else if found {
			metrics.SummaryCacheHits.Inc()
			metrics.RecordSummary(provider, "cached")
			return &model.SummarizeResponse{Summary: cached}, nil
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.generator.Complete(genCtx, &llm.CompletionRequest{
		Messages: []llm.ChatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		metrics.RecordSummary(provider, "error")
		s.logger.Error("failed to generate summary", zap.String("provider", provider), zap.Error(err))
		return nil, newError(ErrInternal, "Something went wrong.", err)
	}

	metrics.RecordSummary(provider, "success")
	s.logger.Info("summary generated",
		zap.String("provider", provider),
		zap.String("model", resp.Model),
		zap.Int("tokens_in", resp.TokensIn),
		zap.Int("tokens_out", resp.TokensOut),
		zap.Int64("latency_ms", resp.LatencyMs),
	)

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if err := s.cache.Set(ctx, key, resp.Content, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("summary cache store failed", zap.Error(err))
		}
	}

	return &model.SummarizeResponse{Summary: resp.Content}, nil
}

func cacheKey(provider, prompt string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
