package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"cryptic-server/internal/auth"
	"cryptic-server/internal/errs"
	"cryptic-server/internal/model"
	"cryptic-server/internal/store"
)

// CurrencyHandler implements wallets and the transaction ledger. Wallets are
// addressed as capabilities: whoever presents uuid and key can spend.
type CurrencyHandler struct {
	Store *store.Store
}

type walletRef struct {
	SourceUUID string `json:"source_uuid"`
	Key        string `json:"key"`
}

// unlockedWallet resolves a wallet reference: unknown uuid first, then the
// constant-time key check.
func (h *CurrencyHandler) unlockedWallet(ref walletRef) (*model.Wallet, error) {
	wallet, err := h.Store.GetWallet(ref.SourceUUID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, errs.UnknownSourceOrDestination
	}
	if !auth.SecureCompare(ref.Key, wallet.Key) {
		return nil, errs.PermissionDenied
	}
	return wallet, nil
}

func (h *CurrencyHandler) Create(user *model.User, _ []byte) (gin.H, error) {
	existing, err := h.Store.GetWalletByUser(user.UUID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.AlreadyOwnAWallet
	}
	wallet, err := h.Store.CreateWallet(user.UUID)
	if err != nil {
		return nil, err
	}
	return walletResponse(wallet), nil
}

func (h *CurrencyHandler) Get(user *model.User, data []byte) (gin.H, error) {
	var ref walletRef
	if err := bind(data, &ref); err != nil {
		return nil, err
	}
	wallet, err := h.unlockedWallet(ref)
	if err != nil {
		return nil, err
	}
	n, err := h.Store.CountTransactions(wallet.SourceUUID)
	if err != nil {
		return nil, err
	}

	resp := walletResponse(wallet)
	resp["transactions"] = n
	return resp, nil
}

func (h *CurrencyHandler) Send(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		walletRef
		SendAmount      int64  `json:"send_amount"`
		DestinationUUID string `json:"destination_uuid"`
		Usage           string `json:"usage"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	if req.SendAmount <= 0 {
		return nil, errs.InvalidRequest
	}
	wallet, err := h.unlockedWallet(req.walletRef)
	if err != nil {
		return nil, err
	}

	err = h.Store.Transfer(wallet.SourceUUID, req.DestinationUUID, req.SendAmount, req.Usage, 0)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.UnknownSourceOrDestination
		}
		if errors.Is(err, store.ErrInsufficientFunds) {
			return nil, errs.NotEnoughCoins
		}
		return nil, err
	}
	return gin.H{"ok": true}, nil
}

func (h *CurrencyHandler) Transactions(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		walletRef
		Count  int `json:"count"`
		Offset int `json:"offset"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	wallet, err := h.unlockedWallet(req.walletRef)
	if err != nil {
		return nil, err
	}
	if req.Count <= 0 {
		req.Count = 10
	}

	transactions, err := h.Store.ListTransactions(wallet.SourceUUID, req.Count, req.Offset)
	if err != nil {
		return nil, err
	}
	return gin.H{"transactions": transactions}, nil
}

func (h *CurrencyHandler) List(user *model.User, _ []byte) (gin.H, error) {
	wallets, err := h.Store.ListWalletUUIDsByUser(user.UUID)
	if err != nil {
		return nil, err
	}
	return gin.H{"wallets": wallets}, nil
}

// Reset discards the wallet without requiring the key; only the owning user
// may do it. The uuid is unknown afterwards.
func (h *CurrencyHandler) Reset(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		SourceUUID string `json:"source_uuid"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	wallet, err := h.Store.GetWallet(req.SourceUUID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, errs.UnknownSourceOrDestination
	}
	if wallet.UserUUID != user.UUID {
		return nil, errs.PermissionDenied
	}
	if err := h.Store.DeleteWallet(wallet.SourceUUID); err != nil {
		return nil, err
	}
	return gin.H{"ok": true}, nil
}

// Delete removes the wallet; it is key-gated instead of owner-gated.
func (h *CurrencyHandler) Delete(user *model.User, data []byte) (gin.H, error) {
	var ref walletRef
	if err := bind(data, &ref); err != nil {
		return nil, err
	}
	wallet, err := h.unlockedWallet(ref)
	if err != nil {
		return nil, err
	}
	if err := h.Store.DeleteWallet(wallet.SourceUUID); err != nil {
		return nil, err
	}
	return gin.H{"ok": true}, nil
}

func walletResponse(w *model.Wallet) gin.H {
	return gin.H{
		"time_stamp":  w.TimeStamp,
		"source_uuid": w.SourceUUID,
		"key":         w.Key,
		"amount":      w.Amount,
		"user_uuid":   w.UserUUID,
	}
}
