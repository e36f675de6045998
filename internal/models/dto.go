package models

type SignUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type AnalyzeRequest struct {
	JobDescription string `json:"job_description,omitempty"`
}

type CreateJobRequest struct {
	Title       string   `json:"title"`
	CompanyName string   `json:"company_name"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

type UpdateJobRequest struct {
	Title       *string  `json:"title,omitempty"`
	CompanyName *string  `json:"company_name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

type CreateMatchRequest struct {
	ResumeID string `json:"resume_id"`
	JobID    string `json:"job_id"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// FeatureUsage is one row of the usage report. Limit is -1 for unbounded
// plans.
type FeatureUsage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

type UsageResponse struct {
	Plan   Plan                    `json:"plan"`
	Limits map[string]FeatureUsage `json:"limits"`
}
