package profile

// Profile is the emitter's own fiscal identity: the data printed on every
// invoice the user issues. At most one profile is persisted at a time.
type Profile struct {
	Name          string `json:"nombre"`
	TaxID         string `json:"nif"`
	Address       string `json:"direccion"`
	Email         string `json:"email"`
	Phone         string `json:"telefono"`
	IBAN          string `json:"iban,omitempty"`
	InvoiceFormat string `json:"invoice_format,omitempty"`
	TradeRegistry string `json:"registro_mercantil,omitempty"`
}
