package cart

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	GuestHeader = "X-Guest-ID"
	GuestCookie = "guest_id"
)

// GuestIDFromRequest returns the guest id sent by the storefront, header
// first. Anything that is not a uuid is ignored and yields "".
func GuestIDFromRequest(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(GuestHeader))
	if id == "" {
		if c, err := r.Cookie(GuestCookie); err == nil {
			id = strings.TrimSpace(c.Value)
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}
