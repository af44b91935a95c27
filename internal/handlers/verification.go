// internal/handlers/verification.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tianguisbeats/tianguis-backend/internal/pdfgen"
	"github.com/tianguisbeats/tianguis-backend/internal/utils"
)

// VerificationHandler recomputes contract authenticity hashes. Verification is
// a pure computation over the three printed inputs; anyone holding a contract
// can check it without an account.
type VerificationHandler struct{}

func NewVerificationHandler() *VerificationHandler {
	return &VerificationHandler{}
}

type verifyContractRequest struct {
	OrderID         string `json:"order_id" binding:"required"`
	BuyerEmail      string `json:"buyer_email" binding:"required"`
	TransactionDate string `json:"transaction_date" binding:"required"`
	Hash            string `json:"hash" binding:"required"`
}

// VerifyContract compares a presented hash against the recomputed digest.
// Both the full 64-character digest and the printed 16-character prefix are
// accepted.
func (h *VerificationHandler) VerifyContract(c *gin.Context) {
	var req verifyContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	full := pdfgen.SecurityHash(req.OrderID, req.BuyerEmail, req.TransactionDate)
	valid := req.Hash == full || (len(req.Hash) == 16 && full[:16] == req.Hash)

	utils.SuccessResponse(c, gin.H{
		"valid": valid,
	})
}
