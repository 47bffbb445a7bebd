package llm

import "strings"

const SummaryPrompt = "You are a helpful assistant specialized in analyzing Romanian energy bills. " +
	"Extract all relevant billing components such as energy consumption, price per unit, taxes (TVA), " +
	"fixed charges (abonament), and any other fees. For each item, explain how the amount was calculated " +
	"(e.g. '250 kWh x 0.45 RON/kWh = 112.5 RON'). Do not hallucinate values. If data is unclear or missing, say so. "

const ExtractionPrompt = "You are an assistant that extracts billing components and calculates totals. " +
	"Return the data in structured form using the provided function schema. " +
	"If unit prices or quantities are not available, use empty strings."

// Refusal is the fixed answer to anything unrelated to the bill.
const Refusal = "Pot să răspund doar la întrebări legate de factura E.ON sau serviciile E.ON. " +
	"Te rog întreabă ceva despre factura ta."

const ChatPrompt = "You are an assistant named Ioana DOI who ONLY provides information about the uploaded E.ON energy bill. " +
	"You must REFUSE to answer ANY questions unrelated to the bill or E.ON services. " +
	"If asked about anything else, respond with: '" + Refusal + "'"

// BuildSummaryMessages sends the bill as the first user turn and, when
// present, the question as a second one.
func BuildSummaryMessages(text, question string) []Message {
	msgs := []Message{
		{Role: RoleSystem, Content: SummaryPrompt},
		{Role: RoleUser, Content: text},
	}
	if q := strings.TrimSpace(question); q != "" {
		msgs = append(msgs, Message{Role: RoleUser, Content: "Question: " + q})
	}
	return msgs
}

func BuildExtractionMessages(text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: ExtractionPrompt},
		{Role: RoleUser, Content: text},
	}
}

// BuildChatMessages prepends the guarded assistant prompt and the bill
// content to the conversation history.
func BuildChatMessages(billText string, history []Message) []Message {
	msgs := make([]Message, 0, len(history)+2)
	msgs = append(msgs,
		Message{Role: RoleSystem, Content: ChatPrompt},
		Message{Role: RoleSystem, Content: "Conținutul facturii: " + billText},
	)
	return append(msgs, history...)
}
