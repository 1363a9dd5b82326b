package network

// Session statuses reported by the chunk status endpoint. Any other value is an
// intermediate state.
const (
	StatusPending     = "PENDING"
	StatusFinalized   = "FINALIZED"
	StatusUnderfunded = "UNDERFUNDED"
)

// OpenSessionResponse ...
type OpenSessionResponse struct {
	ID        string `json:"id"`
	Min       int64  `json:"min"`
	Max       int64  `json:"max"`
	ChunkSize int64  `json:"chunkSize"`
}

// Receipt is the proof of a completed upload as returned by the service.
type Receipt struct {
	ID                  string   `json:"id"`
	Owner               string   `json:"owner"`
	WinC                string   `json:"winc"`
	DataCaches          []string `json:"dataCaches"`
	FastFinalityIndexes []string `json:"fastFinalityIndexes"`
	Timestamp           int64    `json:"timestamp,omitempty"`
	DeadlineHeight      int64    `json:"deadlineHeight,omitempty"`
	Version             string   `json:"version,omitempty"`
	Public              string   `json:"public,omitempty"`
	Signature           string   `json:"signature,omitempty"`
}

// StatusResponse ...
type StatusResponse struct {
	Status  string   `json:"status"`
	Receipt *Receipt `json:"receipt,omitempty"`
}
