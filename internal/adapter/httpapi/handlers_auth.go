package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

type userResponse struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	CashBalance          decimal.Decimal `json:"cashBalance"`
	LifetimeContribution decimal.Decimal `json:"lifetimeContribution"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                   u.ID.String(),
		Name:                 u.Name,
		Email:                u.Email,
		CashBalance:          u.CashBalance,
		LifetimeContribution: u.LifetimeContribution,
	}
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// handleRegister handles POST /api/auth/register - Create an account
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Name, email and password are required")
		return
	}

	session, err := s.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, sessionResponse{
		Token: session.Token,
		User:  toUserResponse(session.User),
	})
}

// handleLogin handles POST /api/auth/login - Exchange credentials for a token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Email and password are required")
		return
	}

	session, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{
		Token: session.Token,
		User:  toUserResponse(session.User),
	})
}

// handleGetMe handles GET /api/user - The authenticated user's profile
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Not authenticated")
		return
	}

	user, err := s.authService.GetUser(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}
