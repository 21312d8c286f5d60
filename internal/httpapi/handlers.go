package httpapi

import (
	"net/http"
	"strings"
	"time"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/MrEthical07/hrAuth/middleware"
)

type tokensJSON struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

func toTokensJSON(t hrAuth.TokenPair) tokensJSON {
	return tokensJSON{
		AccessToken:      t.AccessToken,
		RefreshToken:     t.RefreshToken,
		AccessExpiresAt:  t.AccessExpiresAt,
		RefreshExpiresAt: t.RefreshExpiresAt,
	}
}

type companyJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type employeeJSON struct {
	ID                 string    `json:"id"`
	LoginID            string    `json:"loginId"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	YearOfJoining      int       `json:"yearOfJoining"`
	ForcePasswordReset bool      `json:"forcePasswordReset"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"createdAt"`
}

/*
====================================
AUTH
====================================
*/

type signupRequest struct {
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Password    string `json:"password"`
}

func (s *server) signup(w http.ResponseWriter, r *http.Request) {
	var body signupRequest
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.CompanyName) == "" || !strings.Contains(body.Email, "@") || body.Password == "" {
		s.badRequest(w, "companyName, email and password are required")
		return
	}

	res, err := s.engine.SignupAdmin(r.Context(), hrAuth.AdminSignupRequest{
		CompanyName: body.CompanyName,
		Email:       body.Email,
		Phone:       body.Phone,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Password:    body.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Admin account created", map[string]any{
		"user": map[string]any{
			"id":        res.AccountID,
			"email":     hrAuth.NormalizeEmail(body.Email),
			"role":      hrAuth.RoleAdmin,
			"companyId": res.Tenant.ID,
		},
		"company": companyJSON{ID: res.Tenant.ID, Name: res.Tenant.DisplayName, Code: res.Tenant.Code},
		"tokens":  toTokensJSON(res.Tokens),
	})
}

type loginRequest struct {
	LoginIDOrEmail string `json:"loginIdOrEmail"`
	Password       string `json:"password"`
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.LoginIDOrEmail) == "" || body.Password == "" {
		s.badRequest(w, "loginIdOrEmail and password are required")
		return
	}

	res, err := s.engine.Login(r.Context(), body.LoginIDOrEmail, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Login successful", map[string]any{
		"user": map[string]any{
			"id":                 res.AccountID,
			"role":               res.Role,
			"companyId":          res.TenantID,
			"forcePasswordReset": res.MustResetPassword,
		},
		"tokens": toTokensJSON(res.Tokens),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *server) refresh(w http.ResponseWriter, r *http.Request) {
	var body refreshRequest
	if !decode(w, r, &body) {
		return
	}
	if body.RefreshToken == "" {
		s.badRequest(w, "refreshToken is required")
		return
	}

	res, err := s.engine.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Token refreshed", map[string]any{
		"accessToken": res.AccessToken,
		"expiresAt":   res.ExpiresAt,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *server) changePassword(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var body changePasswordRequest
	if !decode(w, r, &body) {
		return
	}
	if body.CurrentPassword == "" || body.NewPassword == "" {
		s.badRequest(w, "currentPassword and newPassword are required")
		return
	}

	if err := s.engine.ChangePassword(r.Context(), claims.AccountID, body.CurrentPassword, body.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Password changed successfully", nil)
}

func (s *server) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	view, err := s.engine.AccountState(r.Context(), claims.AccountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "", map[string]any{
		"id":                 view.AccountID,
		"role":               view.Role,
		"companyId":          view.TenantID,
		"active":             view.Active,
		"forcePasswordReset": view.MustResetPassword(),
	})
}

/*
====================================
ADMIN
====================================
*/

type createEmployeeRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	YearOfJoining int    `json:"yearOfJoining"`
}

func (s *server) createEmployee(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var body createEmployeeRequest
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.FirstName) == "" || strings.TrimSpace(body.LastName) == "" {
		s.badRequest(w, "firstName and lastName are required")
		return
	}

	creds, err := s.engine.CreateEmployee(r.Context(), claims.TenantID, hrAuth.CreateEmployeeRequest{
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		Email:         body.Email,
		Phone:         body.Phone,
		YearOfJoining: body.YearOfJoining,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Employee created", map[string]any{
		"employee": map[string]any{
			"id":            creds.AccountID,
			"loginId":       creds.LoginID,
			"firstName":     body.FirstName,
			"lastName":      body.LastName,
			"yearOfJoining": creds.YearOfJoining,
		},
		"credentials": map[string]string{
			"loginId":           creds.LoginID,
			"temporaryPassword": creds.TemporaryPassword,
		},
	})
}

func (s *server) listEmployees(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	rows, err := s.engine.ListEmployees(r.Context(), claims.TenantID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]employeeJSON, 0, len(rows))
	for _, e := range rows {
		out = append(out, employeeJSON{
			ID:                 e.ID,
			LoginID:            e.LoginID,
			Email:              e.Email,
			Phone:              e.Phone,
			FirstName:          e.FirstName,
			LastName:           e.LastName,
			YearOfJoining:      e.YearOfJoining,
			ForcePasswordReset: e.PasswordState == hrAuth.StateMustResetPassword,
			Active:             e.Active,
			CreatedAt:          e.CreatedAt,
		})
	}

	writeData(w, http.StatusOK, "", map[string]any{
		"employees": out,
		"count":     len(out),
	})
}

type statusRequest struct {
	Active *bool `json:"active"`
}

func (s *server) setEmployeeStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var body statusRequest
	if !decode(w, r, &body) {
		return
	}
	if body.Active == nil {
		s.badRequest(w, "active is required")
		return
	}

	id := r.PathValue("id")
	var err error
	if *body.Active {
		err = s.engine.ActivateAccount(r.Context(), claims.TenantID, id)
	} else {
		err = s.engine.DeactivateAccount(r.Context(), claims.TenantID, id)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Employee status updated", map[string]any{
		"id":     id,
		"active": *body.Active,
	})
}
