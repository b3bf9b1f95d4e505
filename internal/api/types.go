package api

type KeywordDTO struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
	Doc  string   `json:"doc"`
}

type HealthDTO struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Reason   string `json:"reason,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
