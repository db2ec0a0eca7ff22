package clients

// Client represents a registered store client.
type Client struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	CPF   string `json:"cpf" db:"cpf"`
}
