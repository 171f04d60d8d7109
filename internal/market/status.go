package market

import "github.com/farmermarket/farmer_market/internal/models"

// Per-line-item fulfillment states. "pending" is the only initial state,
// "discarded" and "received" are terminal.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusDiscarded = "discarded"
	StatusReceived  = "received"
)

// SellerTargets lists the states a seller may move a pending item into.
var SellerTargets = map[string]bool{
	StatusApproved:  true,
	StatusDiscarded: true,
}

// DisplayStatus derives the order-level status shown to the buyer from its
// line items. Priority: received > approved > discarded > pending.
func DisplayStatus(items []models.OrderItem) string {
	var approved, discarded bool
	for _, it := range items {
		switch it.SellerStatus {
		case StatusReceived:
			return "Received"
		case StatusApproved:
			approved = true
		case StatusDiscarded:
			discarded = true
		}
	}
	if approved {
		return "Approved"
	}
	if discarded {
		return "Discarded"
	}
	return "Pending"
}
