package profile

import "time"

type Location struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Profile is the customer's account details. ID is the user id.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Location  *Location `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeliveryAddress is where orders go when checkout names no address:
// the saved location first, then the profile address.
func (p *Profile) DeliveryAddress() string {
	if p.Location != nil && p.Location.Address != "" {
		return p.Location.Address
	}
	return p.Address
}

// Update carries the editable fields; nil leaves a field alone.
type Update struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}
