package usecase

import "fmt"

// ErrStorageUnavailable indicates the Presence Store or Notification Ledger
// could not be reached. Callers retry with backoff; it is never silently
// dropped.
var ErrStorageUnavailable = fmt.Errorf("presence storage unavailable")
