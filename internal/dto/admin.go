package dto

type AccountRequest struct {
	Username  string  `json:"username"`
	Nama      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	Password  *string `json:"password,omitempty"`
	Kelurahan *string `json:"kelurahan,omitempty"`
}

// DashboardStats leaves a count nil when its source could not be reached.
type DashboardStats struct {
	Threads    *int `json:"threads"`
	Users      *int `json:"users"`
	Screenings *int `json:"screenings"`
	Reviews    *int `json:"reviews"`
}
