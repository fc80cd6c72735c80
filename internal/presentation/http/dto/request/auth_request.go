package request

// OperatorLoginRequest signs a cashier or admin in at a till. TillID is
// optional and only used to label the session in logs.
type OperatorLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	TillID   string `json:"till_id" binding:"omitempty,max=64"`
}
