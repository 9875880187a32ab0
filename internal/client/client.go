package client

// Client is a customer the user issues invoices to. Clients are immutable
// once created; there are no update or delete operations.
type Client struct {
	ID      string  `json:"id"`
	Name    string  `json:"nombre_fiscal"`
	TaxID   string  `json:"cif_nif"`
	Address *string `json:"direccion"`
	Email   *string `json:"email"`
	Phone   *string `json:"telefono"`
}
