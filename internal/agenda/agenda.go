package agenda

import "time"

// Event is a calendar entry, optionally tied to a client.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"titulo"`
	Description string    `json:"descripcion"`
	Start       time.Time `json:"fecha_inicio"`
	End         time.Time `json:"fecha_fin"`
	ClientID    *string   `json:"cliente_id,omitempty"`
}
