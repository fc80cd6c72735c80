package response

import (
	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
)

// Operator is the signed-in user as the till sees it
type Operator struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	CanManageCatalog bool      `json:"can_manage_catalog"`
}

// OperatorSession is the body of a successful login
type OperatorSession struct {
	Operator    Operator `json:"operator"`
	TillID      string   `json:"till_id,omitempty"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
}

// NewOperatorSession builds the login body for user
func NewOperatorSession(user *entity.User, tillID, token string, expiresIn int64) OperatorSession {
	return OperatorSession{
		Operator: Operator{
			ID:               user.ID,
			Name:             user.Name,
			Email:            user.Email,
			Role:             user.Role,
			CanManageCatalog: user.IsAdmin(),
		},
		TillID:      tillID,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}
}
