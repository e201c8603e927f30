package worker

type Filter struct {
	Limit    *int
	Offset   *int
	Page     *int
	Search   *string
	IsActive *bool
}

type GetListResponse struct {
	ID               int     `json:"id"`
	ExternalWorkerID *string `json:"external_worker_id"`
	Name             *string `json:"name"`
	Phone            *string `json:"phone"`
	CompanyName      *string `json:"company_name"`
	Trade            *string `json:"trade"`
	IsActive         *bool   `json:"is_active"`
}

type GetDetailByIdResponse struct {
	ID               int     `json:"id"`
	ExternalWorkerID *string `json:"external_worker_id"`
	Name             *string `json:"name"`
	Phone            *string `json:"phone"`
	BirthDate        *string `json:"birth_date"`
	CompanyName      *string `json:"company_name"`
	Position         *string `json:"position"`
	Trade            *string `json:"trade"`
	IsActive         *bool   `json:"is_active"`
}

// Candidate is one upsert input for the worker directory, produced either
// from a replica employee or a snapshot record.
type Candidate struct {
	ExternalWorkerID string  `json:"external_worker_id"`
	Name             string  `json:"name"`
	Phone            *string `json:"phone"`
	BirthDate        *string `json:"birth_date"`
	CompanyName      *string `json:"company_name"`
	Position         *string `json:"position"`
	Trade            *string `json:"trade"`
	IsActive         bool    `json:"is_active"`
}

type Counts struct {
	Total        int `json:"total"`
	Linked       int `json:"linked"`
	MissingPhone int `json:"missing_phone"`
	Deactivated  int `json:"deactivated"`
}
