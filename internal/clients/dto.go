package clients

type CreateClientRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	CPF   string `json:"cpf" validate:"required,max=14"`
}

// UpdateClientRequest is a partial update; only supplied fields are applied.
// CPF is immutable once set, there is no update path for it.
type UpdateClientRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

type ListClientsRequest struct {
	Name   string
	Email  string
	Limit  int
	Offset int
}

// ClientPublic is the representation returned by the API; cpf stays private.
type ClientPublic struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ClientListResponse struct {
	Clients []ClientPublic `json:"clients"`
}

func toPublic(c Client) ClientPublic {
	return ClientPublic{ID: c.ID, Name: c.Name, Email: c.Email}
}
