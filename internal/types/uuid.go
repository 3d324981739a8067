package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex chk_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

// Prefixes for persisted entity ids
const (
	UUIDPrefixCheckoutSession = "chk"
	UUIDPrefixOrder           = "ord"
	UUIDPrefixCredential      = "cred"
	UUIDPrefixWebhookEvent    = "wevt"
	UUIDPrefixEvent           = "evt"
)

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateOrderNumber returns a short human-readable order number such as
// OD8Q2XZ1 for display on tickets and receipts. Uniqueness is best-effort;
// the ULID id remains the primary key.
func GenerateOrderNumber() string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return ""
	}
	id = strings.ReplaceAll(id, "-", "")

	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper("OD" + id)
}
