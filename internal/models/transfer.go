package models

// TransferStatus represents the lifecycle of one remote operation.
type TransferStatus string

const (
	TransferStatusIdle       TransferStatus = "idle"
	TransferStatusInProgress TransferStatus = "in_progress"
	TransferStatusSucceeded  TransferStatus = "succeeded"
	TransferStatusFailed     TransferStatus = "failed"
)

// Terminal reports whether the status is succeeded or failed.
func (s TransferStatus) Terminal() bool {
	return s == TransferStatusSucceeded || s == TransferStatusFailed
}

// TransferState is the state of an upload dispatch or a folder import.
type TransferState struct {
	Status  TransferStatus `json:"status"`
	Results []Resume       `json:"results,omitempty"`
	Reason  string         `json:"reason,omitempty"`
}

// NewTransferState creates a TransferState in idle status.
func NewTransferState() TransferState {
	return TransferState{Status: TransferStatusIdle}
}
