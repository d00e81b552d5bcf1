package handler

import (
	"github.com/gin-gonic/gin"

	"cryptic-server/internal/auth"
	"cryptic-server/internal/hub"
	"cryptic-server/internal/model"
	"cryptic-server/internal/store"
)

const maxSettingLength = 2048

// AccountHandler implements the session-level actions. Unlike ms endpoints
// these reply with bare objects and plain-English error strings, which is
// what clients match on during the login flow.
type AccountHandler struct {
	Store *store.Store
	Hub   *hub.Hub
}

func (h *AccountHandler) Register(name, password string) (gin.H, *model.User, string) {
	if auth.CheckPasswordStrength(password) != nil {
		return gin.H{"error": "invalid password"}, nil, ""
	}
	existing, err := h.Store.GetUserByName(name)
	if err != nil {
		return internalError(err), nil, ""
	}
	if existing != nil {
		return gin.H{"error": "username already exists"}, nil, ""
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return internalError(err), nil, ""
	}
	user, err := h.Store.CreateUser(name, hash)
	if err != nil {
		return internalError(err), nil, ""
	}
	sess, err := h.Store.CreateSession(user.UUID)
	if err != nil {
		return internalError(err), nil, ""
	}
	return gin.H{"token": sess.Token}, user, sess.Token
}

func (h *AccountHandler) Login(name, password string) (gin.H, *model.User, string) {
	user, err := h.Store.GetUserByName(name)
	if err != nil {
		return internalError(err), nil, ""
	}
	if user == nil || !auth.VerifyPassword(user.Password, password) {
		return gin.H{"error": "permission denied"}, nil, ""
	}
	sess, err := h.Store.CreateSession(user.UUID)
	if err != nil {
		return internalError(err), nil, ""
	}
	if err := h.Store.TouchUser(user.UUID); err != nil {
		return internalError(err), nil, ""
	}
	return gin.H{"token": sess.Token}, user, sess.Token
}

// Resume restores an earlier session from its token.
func (h *AccountHandler) Resume(token string) (gin.H, *model.User, string) {
	sess, err := h.Store.GetSessionByToken(token)
	if err != nil {
		return internalError(err), nil, ""
	}
	if sess == nil {
		return gin.H{"error": "invalid token"}, nil, ""
	}
	user, err := h.Store.GetUser(sess.User)
	if err != nil {
		return internalError(err), nil, ""
	}
	if user == nil {
		return gin.H{"error": "invalid token"}, nil, ""
	}
	if err := h.Store.TouchUser(user.UUID); err != nil {
		return internalError(err), nil, ""
	}
	return gin.H{"token": token}, user, token
}

// ChangePassword swaps the credential without a session; it authenticates
// with the old password inline.
func (h *AccountHandler) ChangePassword(name, password, newPassword string) gin.H {
	user, err := h.Store.GetUserByName(name)
	if err != nil {
		return internalError(err)
	}
	if user == nil || !auth.VerifyPassword(user.Password, password) {
		return gin.H{"error": "permission denied"}
	}
	if auth.CheckPasswordStrength(newPassword) != nil {
		return gin.H{"error": "invalid password"}
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return internalError(err)
	}
	if err := h.Store.UpdateUserPassword(user.UUID, hash); err != nil {
		return internalError(err)
	}
	return gin.H{"success": true}
}

func (h *AccountHandler) Logout(token string) gin.H {
	if err := h.Store.InvalidateSession(token); err != nil {
		return internalError(err)
	}
	return gin.H{"status": "logout"}
}

func (h *AccountHandler) Status() gin.H {
	return gin.H{"online": h.Hub.CountTotal()}
}

func (h *AccountHandler) Info(user *model.User) gin.H {
	return gin.H{
		"uuid":    user.UUID,
		"name":    user.Name,
		"created": user.Created,
		"last":    user.Last,
		"online":  h.Hub.CountUser(user.UUID),
	}
}

// Setting gets, sets or deletes one per-user key.
func (h *AccountHandler) Setting(user *model.User, key string, value *string, del bool) gin.H {
	switch {
	case del:
		deleted, err := h.Store.DeleteSetting(user.UUID, key)
		if err != nil {
			return internalError(err)
		}
		if !deleted {
			return gin.H{"error": "unknown setting"}
		}
		return gin.H{"success": true}
	case value != nil:
		if len(*value) > maxSettingLength {
			return gin.H{"error": "invalid value"}
		}
		if err := h.Store.SetSetting(user.UUID, key, *value); err != nil {
			return internalError(err)
		}
		return gin.H{"key": key, "value": *value}
	default:
		stored, err := h.Store.GetSetting(user.UUID, key)
		if err != nil {
			return internalError(err)
		}
		if stored == nil {
			return gin.H{"error": "unknown setting"}
		}
		return gin.H{"key": key, "value": *stored}
	}
}
