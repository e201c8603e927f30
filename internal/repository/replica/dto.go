package replica

import "time"

// Employee is one row of the external access-control system's employee
// table, joined with its partner table for the company name. Records are
// ephemeral: they live for the duration of one sync page.
type Employee struct {
	EmplCd      string    `json:"empl_cd"`
	Name        string    `json:"name"`
	PartCd      string    `json:"part_cd"`
	CompanyName string    `json:"company_name"`
	Phone       string    `json:"phone"`
	SocialNo    string    `json:"social_no"`
	GojoCd      string    `json:"gojo_cd"`
	JijoCd      string    `json:"jijo_cd"`
	CareCd      string    `json:"care_cd"`
	RoleCd      string    `json:"role_cd"`
	StateFlag   string    `json:"state_flag"`
	EntrDay     string    `json:"entr_day"`
	RetrDay     string    `json:"retr_day"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsActive    bool      `json:"is_active"`
}

type Page struct {
	Employees []Employee
	Total     int
}
