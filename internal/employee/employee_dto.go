package employee

import "time"

type CreateEmployeeRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,min=3,max=20,employee_code"`
	FullName   string `json:"full_name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,max=255,email"`
	Department string `json:"department" validate:"required,min=2,max=50"`
}

type EmployeeResponse struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID.String(),
		EmployeeID: e.EmployeeCode,
		FullName:   e.FullName,
		Email:      e.Email,
		Department: e.Department,
		CreatedAt:  e.CreatedAt,
	}
}

func mapToListResponse(emps []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, 0, len(emps))
	for _, e := range emps {
		res = append(res, mapToResponse(e))
	}
	return res
}
