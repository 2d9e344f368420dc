// Package ids generates the prefixed external identifiers used as business
// keys across the API (e.g. "S-..." for sales, "ST-..." for stock units).
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// Prefixes for each entity's external id.
const (
	PrefixSale          = "S"
	PrefixSaleItem      = "SI"
	PrefixPayment       = "P"
	PrefixProduct       = "PR"
	PrefixCondition     = "PC"
	PrefixStock         = "ST"
	PrefixStockMovement = "SM"
	PrefixClient        = "CL"
	PrefixUser          = "U"
	PrefixActivityLog   = "AL"
	PrefixCategory      = "CAT"
	PrefixBrand         = "BR"
	PrefixAuthenticator = "AU"
)

// New returns a new external id with the given prefix, e.g. "S-6ba7b8149dad".
func New(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + raw[:12]
}
