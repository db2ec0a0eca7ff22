package shared

import (
	"fmt"

	"github.com/vitrine-commerce/vitrine/internal/platform/httpx"
)

// ErrInvalidCredentials covers both unknown usernames and password
// mismatches so responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = fmt.Errorf("%w: incorrect username or password", httpx.ErrUnauthorized)
