package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"cryptic-server/internal/auth"
	"cryptic-server/internal/catalog"
	"cryptic-server/internal/errs"
	"cryptic-server/internal/model"
	"cryptic-server/internal/store"
)

type InventoryHandler struct {
	Store *store.Store
}

func (h *InventoryHandler) List(user *model.User, _ []byte) (gin.H, error) {
	elements, err := h.Store.ListInventory(user.UUID)
	if err != nil {
		return nil, err
	}
	return gin.H{"elements": elements}, nil
}

// Trade hands one owned element over to another user.
func (h *InventoryHandler) Trade(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		ElementUUID string `json:"element_uuid"`
		Target      string `json:"target"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}

	element, err := h.Store.GetInventoryElement(req.ElementUUID)
	if err != nil {
		return nil, err
	}
	if element == nil || element.Owner != user.UUID {
		return nil, errs.ItemNotFound
	}
	if req.Target == user.UUID {
		return nil, errs.CannotTradeWithYourself
	}
	target, err := h.Store.GetUser(req.Target)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errs.UserUUIDDoesNotExist
	}

	if err := h.Store.UpdateInventoryOwner(element.ElementUUID, target.UUID); err != nil {
		return nil, err
	}
	return gin.H{"ok": true}, nil
}

func (h *InventoryHandler) ShopList(user *model.User, _ []byte) (gin.H, error) {
	return gin.H{"categories": catalog.Shop()}, nil
}

func (h *InventoryHandler) ShopInfo(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		Product string `json:"product"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	item, category := catalog.FindItem(req.Product)
	if item == nil {
		return nil, errs.ItemNotFound
	}
	return gin.H{
		"id":         item.ID,
		"name":       req.Product,
		"price":      item.Price,
		"related_ms": item.RelatedMS,
		"category":   category,
	}, nil
}

// ShopBuy atomically debits the wallet and fills the caller's inventory. The
// wallet key must match; wallets are capabilities, not owned objects here.
func (h *InventoryHandler) ShopBuy(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		Products   map[string]int `json:"products"`
		WalletUUID string         `json:"wallet_uuid"`
		Key        string         `json:"key"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	if len(req.Products) == 0 {
		return nil, errs.InvalidRequest
	}

	wallet, err := h.Store.GetWallet(req.WalletUUID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, errs.WalletNotFound
	}
	if !auth.SecureCompare(req.Key, wallet.Key) {
		return nil, errs.PermissionDenied
	}

	var total int64
	items := make([]store.PurchaseItem, 0, len(req.Products))
	for name, count := range req.Products {
		if count <= 0 {
			return nil, errs.InvalidRequest
		}
		item, _ := catalog.FindItem(name)
		if item == nil {
			return nil, errs.ItemNotFound
		}
		total += item.Price * int64(count)
		items = append(items, store.PurchaseItem{Name: name, RelatedMS: item.RelatedMS, Count: count})
	}

	bought, err := h.Store.Purchase(wallet.SourceUUID, user.UUID, total, items)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return nil, errs.NotEnoughCoins
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.WalletNotFound
		}
		return nil, err
	}
	return gin.H{"bought_products": bought}, nil
}
