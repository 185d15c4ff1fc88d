// MIT License
//
// Copyright (c) 2022-2026 FinMesh Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package bank

import (
	"context"
	"errors"
	"sync"

	"github.com/tochemey/finmesh/dispatch"
	"github.com/tochemey/finmesh/message"
	"github.com/tochemey/finmesh/normalize"
)

// Transaction codes served by this package.
const (
	CodeAccountInfo    = "ACCT_INFO_REQ"
	CodeBalanceInquiry = "BAL_INQ_REQ"
	CodeFundsTransfer  = "FUNDS_XFER_REQ"
)

// Response status codes. An unknown account is a well-formed business
// outcome, never a handler error.
const (
	StatusInvalidAccount    = "5100"
	StatusInsufficientFunds = "5200"
	StatusMalformedRequest  = "5000"
)

// Field names shared by requests and responses.
const (
	FieldAccountNumber = "accountNumber"
	FieldAccountName   = "accountName"
	FieldBalance       = "balance"
	FieldCurrency      = "currency"
	FieldStatus        = "status"
	FieldErrorMessage  = "errorMessage"
	FieldFromAccount   = "fromAccount"
	FieldToAccount     = "toAccount"
	FieldAmount        = "amount"
)

// AccountInfoHandler serves full account lookups.
type AccountInfoHandler struct {
	store AccountStore
}

// enforce compilation error
var _ dispatch.Handler = (*AccountInfoHandler)(nil)

// NewAccountInfoHandler creates the handler over the given store.
func NewAccountInfoHandler(store AccountStore) *AccountInfoHandler {
	return &AccountInfoHandler{store: store}
}

// MessageCode returns the transaction code this handler serves.
func (h *AccountInfoHandler) MessageCode() string { return CodeAccountInfo }

// Handle answers an account info request. An unknown account number yields
// an invalid-account status with zeroed numerics and an empty name.
func (h *AccountInfoHandler) Handle(ctx context.Context, request *message.Message, _ *dispatch.Context) (*message.Message, error) {
	number, err := request.GetString(FieldAccountNumber)
	if err != nil {
		return malformed(request, err.Error()), nil
	}

	account, err := h.store.Get(ctx, number)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return invalidAccount(request, number), nil
	case err != nil:
		return nil, err
	}

	return message.NewResponse(request, message.WithFields(map[string]any{
		FieldStatus:        normalize.SuccessCode,
		FieldAccountNumber: account.Number,
		FieldAccountName:   account.Name,
		FieldBalance:       account.Balance,
		FieldCurrency:      account.Currency,
	})), nil
}

// BalanceHandler serves balance inquiries.
type BalanceHandler struct {
	store AccountStore
}

// enforce compilation error
var _ dispatch.Handler = (*BalanceHandler)(nil)

// NewBalanceHandler creates the handler over the given store.
func NewBalanceHandler(store AccountStore) *BalanceHandler {
	return &BalanceHandler{store: store}
}

// MessageCode returns the transaction code this handler serves.
func (h *BalanceHandler) MessageCode() string { return CodeBalanceInquiry }

// Handle answers a balance inquiry. The unknown-account contract matches
// [AccountInfoHandler.Handle].
func (h *BalanceHandler) Handle(ctx context.Context, request *message.Message, _ *dispatch.Context) (*message.Message, error) {
	number, err := request.GetString(FieldAccountNumber)
	if err != nil {
		return malformed(request, err.Error()), nil
	}

	account, err := h.store.Get(ctx, number)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return invalidAccount(request, number), nil
	case err != nil:
		return nil, err
	}

	return message.NewResponse(request, message.WithFields(map[string]any{
		FieldStatus:        normalize.SuccessCode,
		FieldAccountNumber: account.Number,
		FieldBalance:       account.Balance,
		FieldCurrency:      account.Currency,
	})), nil
}

// TransferHandler serves funds transfers between two accounts. Transfers
// are serialized by an internal mutex because the store contract has no
// multi-record transaction.
type TransferHandler struct {
	store AccountStore
	mu    sync.Mutex
}

// enforce compilation error
var _ dispatch.Handler = (*TransferHandler)(nil)

// NewTransferHandler creates the handler over the given store.
func NewTransferHandler(store AccountStore) *TransferHandler {
	return &TransferHandler{store: store}
}

// MessageCode returns the transaction code this handler serves.
func (h *TransferHandler) MessageCode() string { return CodeFundsTransfer }

// Handle moves an amount in minor units between two accounts. Business
// rejections (unknown account, insufficient funds, non-positive amount) are
// well-formed responses, not errors.
func (h *TransferHandler) Handle(ctx context.Context, request *message.Message, _ *dispatch.Context) (*message.Message, error) {
	from, err := request.GetString(FieldFromAccount)
	if err != nil {
		return malformed(request, err.Error()), nil
	}
	to, err := request.GetString(FieldToAccount)
	if err != nil {
		return malformed(request, err.Error()), nil
	}
	amount, err := request.GetInt64(FieldAmount)
	if err != nil {
		return malformed(request, err.Error()), nil
	}
	if amount <= 0 {
		return malformed(request, "amount must be positive"), nil
	}
	if from == to {
		return malformed(request, "source and destination accounts are identical"), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	source, err := h.store.Get(ctx, from)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return invalidAccount(request, from), nil
	case err != nil:
		return nil, err
	}

	destination, err := h.store.Get(ctx, to)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return invalidAccount(request, to), nil
	case err != nil:
		return nil, err
	}

	if source.Balance < amount {
		return message.NewResponse(request, message.WithFields(map[string]any{
			FieldStatus:       StatusInsufficientFunds,
			FieldErrorMessage: "insufficient funds",
			FieldFromAccount:  from,
			FieldToAccount:    to,
			FieldAmount:       amount,
		})), nil
	}

	source.Balance -= amount
	destination.Balance += amount
	if err := h.store.Save(ctx, source); err != nil {
		return nil, err
	}
	if err := h.store.Save(ctx, destination); err != nil {
		// Roll the debit back so the books stay balanced.
		source.Balance += amount
		_ = h.store.Save(ctx, source)
		return nil, err
	}

	return message.NewResponse(request, message.WithFields(map[string]any{
		FieldStatus:      normalize.SuccessCode,
		FieldFromAccount: from,
		FieldToAccount:   to,
		FieldAmount:      amount,
		FieldBalance:     source.Balance,
	})), nil
}

// RegisterHandlers installs the three bank handlers on the registry.
func RegisterHandlers(registry *dispatch.Registry, store AccountStore) {
	registry.Register(NewAccountInfoHandler(store))
	registry.Register(NewBalanceHandler(store))
	registry.Register(NewTransferHandler(store))
}

// invalidAccount builds the well-formed "not found" response: invalid
// account status, zeroed numerics, empty name.
func invalidAccount(request *message.Message, number string) *message.Message {
	return message.NewResponse(request, message.WithFields(map[string]any{
		FieldStatus:        StatusInvalidAccount,
		FieldErrorMessage:  "invalid account",
		FieldAccountNumber: number,
		FieldAccountName:   "",
		FieldBalance:       int64(0),
		FieldCurrency:      "",
	}))
}

// malformed builds the response for a request missing or mistyping a field.
func malformed(request *message.Message, reason string) *message.Message {
	return message.NewResponse(request, message.WithFields(map[string]any{
		FieldStatus:       StatusMalformedRequest,
		FieldErrorMessage: reason,
	}))
}
