package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/DxMxTx/autonomia/internal/logger"
)

// OpenAIInterpreter implements Interpreter with a chat-completion call
// that asks the model for a strict JSON envelope.
type OpenAIInterpreter struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

func NewOpenAIInterpreter(client *openai.Client, model string, timeout time.Duration) *OpenAIInterpreter {
	return &OpenAIInterpreter{
		client:  client,
		model:   model,
		timeout: timeout,
		log:     logger.WithComponent("interpreter-openai"),
	}
}

// wireResponse mirrors the JSON envelope the system prompt demands.
type wireResponse struct {
	Intent           string  `json:"intent"`
	Confidence       float64 `json:"confidence"`
	RequiresMoreInfo bool    `json:"requiresMoreInfo"`
	Reply            string  `json:"aiResponse"`
	Action           *struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	} `json:"action"`
}

func (i *OpenAIInterpreter) Interpret(ctx context.Context, history []Message, snap Snapshot) (*Result, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(snap),
	})

	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Sender == SenderAssistant {
			role = openai.ChatMessageRoleAssistant
		}

		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}

	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       i.model,
		Messages:    messages,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	content := stripFences(resp.Choices[0].Message.Content)

	var wire wireResponse
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		i.log.Warn().Err(err).Str("content", content).Msg("unparseable interpreter response")
		return nil, fmt.Errorf("parsing interpreter response: %w", err)
	}

	result := &Result{
		Intent:           wire.Intent,
		Confidence:       wire.Confidence,
		RequiresMoreInfo: wire.RequiresMoreInfo,
		Reply:            wire.Reply,
	}

	if wire.Action != nil && wire.Action.Type != "" && wire.Action.Type != "UNKNOWN" {
		action, err := DecodeAction(wire.Action.Type, wire.Action.Payload)
		if err != nil {
			return nil, err
		}

		result.Action = action
	}

	i.log.Debug().
		Str("intent", result.Intent).
		Float64("confidence", result.Confidence).
		Bool("has_action", result.Action != nil).
		Msg("interpreted user request")

	return result, nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON
// in one despite the response-format instruction.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}

func systemPrompt(snap Snapshot) string {
	today := time.Now().Format("2006-01-02")

	type clientSummary struct {
		ID    string `json:"id"`
		Name  string `json:"nombre_fiscal"`
		TaxID string `json:"cif_nif"`
	}

	type invoiceSummary struct {
		ID        string `json:"id"`
		Number    string `json:"numero_factura"`
		ClientID  string `json:"cliente_id"`
		Total     string `json:"total_factura"`
		Status    string `json:"estado"`
		IssueDate string `json:"fecha_emision"`
	}

	type eventSummary struct {
		ID       string  `json:"id"`
		Title    string  `json:"titulo"`
		Start    string  `json:"fecha_inicio"`
		ClientID *string `json:"cliente_id"`
	}

	type downPaymentSummary struct {
		ID        string  `json:"id"`
		ClientID  string  `json:"cliente_id"`
		Amount    string  `json:"monto"`
		AppliedTo *string `json:"factura_id_aplicada"`
	}

	clients := make([]clientSummary, len(snap.Clients))
	for i, c := range snap.Clients {
		clients[i] = clientSummary{ID: c.ID, Name: c.Name, TaxID: c.TaxID}
	}

	invoices := make([]invoiceSummary, len(snap.Invoices))
	for i, inv := range snap.Invoices {
		invoices[i] = invoiceSummary{
			ID:        inv.ID,
			Number:    inv.Number,
			ClientID:  inv.ClientID,
			Total:     inv.Total.StringFixed(2),
			Status:    string(inv.Status),
			IssueDate: inv.IssueDate.Format("2006-01-02"),
		}
	}

	events := make([]eventSummary, len(snap.Events))
	for i, e := range snap.Events {
		events[i] = eventSummary{ID: e.ID, Title: e.Title, Start: e.Start.Format(time.RFC3339), ClientID: e.ClientID}
	}

	payments := make([]downPaymentSummary, len(snap.DownPayments))
	for i, d := range snap.DownPayments {
		payments[i] = downPaymentSummary{ID: d.ID, ClientID: d.ClientID, Amount: d.Amount.StringFixed(2), AppliedTo: d.AppliedInvoiceID}
	}

	marshal := func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			return "[]"
		}
		return string(b)
	}

	profileJSON := "null"
	if snap.Profile != nil {
		profileJSON = marshal(snap.Profile)
	}

	return fmt.Sprintf(`Eres "AutonomIA", un asistente virtual experto en gestión para autónomos y freelancers. Te comunicarás en español.
La fecha de hoy es: %s.

Analiza la petición del usuario y el historial de chat. Determina la intención y, si es posible, genera una acción concreta. Si necesitas más información, pídesela amablemente.

Debes responder SIEMPRE con un objeto JSON con esta estructura exacta:
{"intent": string, "confidence": number, "requiresMoreInfo": boolean, "aiResponse": string, "action": {"type": string, "payload": object} | null}

DATOS DEL SISTEMA DISPONIBLES:
- Mis Datos (Usuario/Emisor): %s
- Clientes: %s
- Facturas: %s
- Entregas a cuenta: %s
- Eventos de Agenda: %s

ACCIONES Y PAYLOADS:
1. CREATE_CLIENT: { nombre_fiscal: string, cif_nif: string, direccion?: string, email?: string, telefono?: string }
2. CREATE_INVOICE: { cliente_id: string, tipo_iva?: number, fecha_emision?: string, fecha_vencimiento?: string, lineas: [{ concepto: string, cantidad: number, precio_unitario: number }] }. DEBES encontrar el cliente_id a partir del nombre. Asume IVA del 21%% si no se especifica.
3. UPDATE_INVOICE_STATUS: { invoiceId: string, status: "emitida" | "pagada" | "vencida" }. DEBES encontrar el invoiceId a partir del número de factura.
4. CREATE_DOWN_PAYMENT: { cliente_id: string, monto: number, descripcion: string }
5. CREATE_AGENDA_EVENT: { titulo: string, descripcion: string, fecha_inicio: string (ISO), fecha_fin: string (ISO), cliente_id?: string }. Interpreta fechas relativas.
6. READ_INVOICE: { lookup: "latest" | "by_number", numero_factura?: string }
7. Si el usuario solo pregunta algo, responde en aiResponse y deja action en null.
8. UNKNOWN si no puedes determinar la intención.

Si te falta algún dato, pon requiresMoreInfo en true, pregunta en aiResponse y deja action en null. ¡SIN TEXTO ADICIONAL FUERA DEL JSON!`,
		today, profileJSON, marshal(clients), marshal(invoices), marshal(payments), marshal(events))
}
