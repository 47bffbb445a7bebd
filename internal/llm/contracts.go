package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BillItem is one billing component as returned by the extraction function call.
// Amounts stay strings: the model copies them from the bill verbatim.
type BillItem struct {
	Label     string `json:"label"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// Summarizer explains a bill, or answers question about it when question is
// non-empty. The int is the total token usage reported by the provider.
type Summarizer interface {
	Summarize(ctx context.Context, text, question string) (string, int, error)
}

// ItemExtractor pulls the itemized billing components out of bill text.
type ItemExtractor interface {
	ExtractItems(ctx context.Context, text string) ([]BillItem, error)
}

// Chatter continues a conversation. messages already include the system prompts.
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, int, error)
}

// Assistant is everything the chat session needs from a provider.
type Assistant interface {
	Summarizer
	ItemExtractor
	Chatter
}
