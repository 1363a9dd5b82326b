package upload

import (
	"errors"

	"github.com/ardrive/turbo-go/upload/network"
	"github.com/ardrive/turbo-go/upload/session"
)

var (
	// ErrUnderfunded is returned when the payer's balance cannot cover the
	// upload. Retrying without topping up will fail the same way.
	ErrUnderfunded = session.ErrUnderfunded
	// ErrFinalizeTimeout is returned when the service has not finalized the
	// upload before the deadline. The upload may still complete later.
	ErrFinalizeTimeout = session.ErrFinalizeTimeout

	errEmptyReceipt = errors.New("service returned a receipt without an id")
)

// Result is the proof of a completed upload.
type Result struct {
	ID                  string
	Owner               string
	WinC                string
	DataCaches          []string
	FastFinalityIndexes []string
	// Chunked reports whether the chunked protocol was used.
	Chunked bool
}

func newResult(receipt network.Receipt, chunked bool) (Result, error) {
	if receipt.ID == "" {
		return Result{}, errEmptyReceipt
	}
	return Result{
		ID:                  receipt.ID,
		Owner:               receipt.Owner,
		WinC:                receipt.WinC,
		DataCaches:          receipt.DataCaches,
		FastFinalityIndexes: receipt.FastFinalityIndexes,
		Chunked:             chunked,
	}, nil
}
