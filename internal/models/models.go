// Package models declares the persistent entities of the storefront.
package models

import "time"

// Channel splits the catalog by fulfillment path.
type Channel string

const (
	// ChannelManual sells for off-platform payment verified by a photo receipt.
	ChannelManual Channel = "manual"
	// ChannelToken sells for in-platform token payment settled by the provider.
	ChannelToken Channel = "token"
)

// Valid reports whether the channel is one of the known fulfillment paths.
func (ch Channel) Valid() bool {
	return ch == ChannelManual || ch == ChannelToken
}

// Order statuses.
const (
	OrderStatusPending = "pending"
	OrderStatusClosed  = "closed"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Section keys. Sections are singleton content blocks seeded at bootstrap.
const (
	SectionAbout      = "about"
	SectionPromotions = "promotions"
)

// Category groups products within one fulfillment channel.
type Category struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	PhotoPath   *string   `db:"photo_path"`
	Channel     Channel   `db:"channel"`
	CreatedAt   time.Time `db:"created_at"`
}

// Product is a purchasable item. Price is effective under the manual
// channel, TokenPrice under the token channel; the other stays zero.
type Product struct {
	ID                    int64     `db:"id"`
	Name                  string    `db:"name"`
	Description           string    `db:"description"`
	Price                 float64   `db:"price"`
	TokenPrice            int64     `db:"token_price"`
	CategoryID            int64     `db:"category_id"`
	ActivationInstruction *string   `db:"activation_instruction"`
	PhotoPath             *string   `db:"photo_path"`
	Channel               Channel   `db:"channel"`
	CreatedAt             time.Time `db:"created_at"`
}

// Section is a singleton content block shown from the main menu.
type Section struct {
	Key       string    `db:"key"`
	Content   string    `db:"content"`
	PhotoPath *string   `db:"photo_path"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Order tracks a manual-channel purchase awaiting approver review.
type Order struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	DisplayName string    `db:"display_name"`
	ProductID   int64     `db:"product_id"`
	Amount      float64   `db:"amount"`
	Status      string    `db:"status"`
	PhotoPath   *string   `db:"photo_path"`
	CreatedAt   time.Time `db:"created_at"`
}

// Payment tracks a token-channel purchase keyed by an opaque correlation token.
type Payment struct {
	ID               int64     `db:"id"`
	UserID           int64     `db:"user_id"`
	ProductID        int64     `db:"product_id"`
	Amount           int64     `db:"amount"`
	Payload          string    `db:"payload"`
	TelegramChargeID *string   `db:"telegram_charge_id"`
	ProviderChargeID *string   `db:"provider_charge_id"`
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
}
