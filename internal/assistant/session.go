package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/bills-assistant/internal/common"
	"github.com/joseph-ayodele/bills-assistant/internal/extract"
	"github.com/joseph-ayodele/bills-assistant/internal/llm"
)

// Extractor produces the bill text a session works with.
type Extractor interface {
	Primary(ctx context.Context, src extract.Source) (string, []extract.Result)
}

// Session is one user's conversation about one bill. It is not safe for
// concurrent use.
type Session struct {
	extractor Extractor
	llm       llm.Assistant
	logger    *slog.Logger

	document string
	billText string
	results  []extract.Result
	history  []llm.Message
	tokens   int
}

// NewSession creates an empty session. client may be nil, in which case every
// LLM-backed call fails with common.ErrLLMUnavailable.
func NewSession(extractor Extractor, client llm.Assistant, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{extractor: extractor, llm: client, logger: logger}
}

// LoadBill extracts src and makes it the session's bill. The conversation
// history is cleared.
func (s *Session) LoadBill(ctx context.Context, src extract.Source) error {
	start := time.Now()
	text, results := s.extractor.Primary(ctx, src)
	if strings.TrimSpace(text) == "" {
		s.logger.Warn("assistant.load.no_text", "document", src.ID())
		return common.NewAppError("NO_TEXT", "no text could be extracted from "+src.ID(), common.ErrStrategy)
	}
	s.document = src.ID()
	s.billText = text
	s.results = results
	s.history = nil
	s.logger.Info("assistant.load.ok",
		"document", src.ID(),
		"chars", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Ask sends question with the conversation so far and records both turns.
// A failed call leaves the history unchanged.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return "", common.InvalidInputf("question is empty")
	}
	if err := s.ready(); err != nil {
		return "", err
	}

	turn := llm.Message{Role: llm.RoleUser, Content: q}
	history := append(append([]llm.Message{}, s.history...), turn)
	answer, tokens, err := s.llm.Chat(ctx, llm.BuildChatMessages(s.billText, history))
	if err != nil {
		s.logger.Error("assistant.ask.error", "document", s.document, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrSummary, err)
	}
	s.tokens += tokens
	s.history = append(history, llm.Message{Role: llm.RoleAssistant, Content: answer})
	return answer, nil
}

// Summary explains the bill, or answers question about it without touching
// the chat history.
func (s *Session) Summary(ctx context.Context, question string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	answer, tokens, err := s.llm.Summarize(ctx, s.billText, question)
	if err != nil {
		s.logger.Error("assistant.summary.error", "document", s.document, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrSummary, err)
	}
	s.tokens += tokens
	return answer, nil
}

// Items extracts the itemized billing components of the bill.
func (s *Session) Items(ctx context.Context) ([]llm.BillItem, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	items, err := s.llm.ExtractItems(ctx, s.billText)
	if err != nil {
		s.logger.Error("assistant.items.error", "document", s.document, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrSummary, err)
	}
	return items, nil
}

// History returns a copy of the conversation.
func (s *Session) History() []llm.Message {
	return append([]llm.Message{}, s.history...)
}

// Reset forgets the conversation but keeps the bill.
func (s *Session) Reset() {
	s.history = nil
}

// Document is the ID of the loaded bill, "" before LoadBill.
func (s *Session) Document() string { return s.document }

// BillText is the extracted text the LLM sees.
func (s *Session) BillText() string { return s.billText }

// Results are the per-strategy extraction results of the loaded bill.
func (s *Session) Results() []extract.Result { return s.results }

// TokensUsed sums the token usage of every LLM call in this session.
func (s *Session) TokensUsed() int { return s.tokens }

func (s *Session) ready() error {
	if s.llm == nil {
		return common.NewAppError("LLM_UNAVAILABLE", "set OPENAI_API_KEY to use the assistant", common.ErrLLMUnavailable)
	}
	if s.billText == "" {
		return common.InvalidInputf("no bill loaded")
	}
	return nil
}
