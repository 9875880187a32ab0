package assistant

import (
	"context"

	"github.com/DxMxTx/autonomia/internal/agenda"
	"github.com/DxMxTx/autonomia/internal/client"
	"github.com/DxMxTx/autonomia/internal/downpayment"
	"github.com/DxMxTx/autonomia/internal/invoice"
	"github.com/DxMxTx/autonomia/internal/profile"
)

// Sender identifies who wrote a chat message.
const (
	SenderUser      = "user"
	SenderAssistant = "ai"
)

type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Snapshot is the read-only view of the user's data handed to the
// interpreter as conversation context.
type Snapshot struct {
	Clients      []*client.Client
	Invoices     []*invoice.Invoice
	Events       []*agenda.Event
	DownPayments []*downpayment.DownPayment
	Profile      *profile.Profile
}

// Result is the interpreter's structured reading of the user's request.
// Action is nil for plain conversation, questions and unknown intents.
type Result struct {
	Intent           string
	Confidence       float64
	RequiresMoreInfo bool
	Reply            string
	Action           Action
}

// Interpreter turns a chat history plus data snapshot into a Result.
// Implementations talk to an external language model; everything they
// return passes through DecodeAction before anything is executed.
//
//go:generate mockgen -source=interpreter.go -destination=interpreter_mock.go -package=assistant
type Interpreter interface {
	Interpret(ctx context.Context, history []Message, snap Snapshot) (*Result, error)
}
