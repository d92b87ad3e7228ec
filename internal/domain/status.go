package domain

import "strings"

// statusMap is the fixed mapping from the gateway's raw order_status
// values to our transaction statuses.
var statusMap = map[string]TxStatus{
	"SUCCESS": StatusCompleted,
	"FAILURE": StatusFailed,
	"ABORTED": StatusCancelled,
	"INVALID": StatusError,
	"":        StatusPending,
}

// ClassifyStatus maps a raw gateway status string to a TxStatus.
// Unrecognized values classify as StatusUnknown rather than failing;
// the gateway has shipped new status strings before.
func ClassifyStatus(raw string) TxStatus {
	if s, ok := statusMap[strings.ToUpper(raw)]; ok {
		return s
	}
	return StatusUnknown
}
