package dto

// DonateRequest is the request body for initiating a donation.
type DonateRequest struct {
	RequestID  string  `json:"request_id" binding:"required,uuid"`
	ReceiverID string  `json:"receiver_id" binding:"required,uuid"`
	Amount     int64   `json:"amount" binding:"required,gt=0"`
	Currency   string  `json:"currency" binding:"required,len=3"`
	Provider   string  `json:"provider" binding:"required,safe_id"`
	PayerPhone *string `json:"payer_phone,omitempty"`
	PayerEmail *string `json:"payer_email,omitempty" binding:"omitempty,email"`
}

// DonateResponse is the response body for a successfully initiated donation.
type DonateResponse struct {
	CorrelationKey   string `json:"correlation_key"`
	ProviderRef      string `json:"provider_ref,omitempty"`
	CheckoutURL      string `json:"checkout_url,omitempty"`
	PushConfirmation string `json:"push_confirmation,omitempty"`
	Status           string `json:"status"`
}

// DonationStatusResponse is the response for a donation status query.
type DonationStatusResponse struct {
	CorrelationKey string `json:"correlation_key"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount"`
	Message        string `json:"message"`
}

// WalletResponse is the response for a wallet balance query.
type WalletResponse struct {
	Balance int64 `json:"balance"`
}

// LedgerEntryResponse is a single credit line in a wallet statement.
type LedgerEntryResponse struct {
	ID             string `json:"id"`
	GiverID        string `json:"giver_id"`
	Amount         int64  `json:"amount"`
	CorrelationKey string `json:"correlation_key"`
	CreatedAt      string `json:"created_at"`
}

// WalletStatementResponse wraps a wallet balance with its credit history.
type WalletStatementResponse struct {
	Balance int64                 `json:"balance"`
	Entries []LedgerEntryResponse `json:"entries"`
}

// UserStatsResponse is the response for a user's gamification stats.
type UserStatsResponse struct {
	UserID            string `json:"user_id"`
	TotalPoints       int64  `json:"total_points"`
	Level             int    `json:"level"`
	DonationsGiven    int64  `json:"donations_given"`
	DonationsReceived int64  `json:"donations_received"`
}

// WebhookAck is the body returned to providers for delivered webhooks.
type WebhookAck struct {
	Disposition string `json:"disposition"`
}
