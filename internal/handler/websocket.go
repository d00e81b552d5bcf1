package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"cryptic-server/internal/hub"
	"cryptic-server/internal/model"
)

// WebSocketHandler runs one RPC connection. Every connection starts
// anonymous; register, login or session promote it to authenticated, logout
// demotes it again. ms calls are only dispatched while authenticated.
type WebSocketHandler struct {
	Hub     *hub.Hub
	Account *AccountHandler
	Router  *Router
}

type clientMessage struct {
	Action   string          `json:"action"`
	Name     string          `json:"name"`
	Password string          `json:"password"`
	New      string          `json:"new"`
	Token    string          `json:"token"`
	Key      string          `json:"key"`
	Value    *string         `json:"value"`
	Delete   bool            `json:"delete"`
	Tag      string          `json:"tag"`
	MS       string          `json:"ms"`
	Endpoint []string        `json:"endpoint"`
	Data     json.RawMessage `json:"data"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *WebSocketHandler) Serve(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	ws.SetReadLimit(1024 * 1024)
	const pongWait = 60 * time.Second
	const writeWait = 10 * time.Second
	pingPeriod := (pongWait * 9) / 10

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	var closeOnce sync.Once
	closeDone := func() {
		closeOnce.Do(func() {
			close(done)
		})
	}
	defer closeDone()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				deadline := time.Now().Add(writeWait)
				if err := ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					_ = ws.Close()
					return
				}
			}
		}
	}()

	var (
		user  *model.User
		token string
		conn  *hub.Connection
	)
	logIn := func(u *model.User, t string) {
		user = u
		token = t
		conn = &hub.Connection{UserUUID: u.UUID}
		h.Hub.Register(conn)
	}
	logOut := func() {
		if conn != nil {
			h.Hub.Unregister(conn)
			conn = nil
		}
		user = nil
		token = ""
	}
	defer logOut()

	write := func(v any) error {
		ws.SetWriteDeadline(time.Now().Add(writeWait))
		return ws.WriteJSON(v)
	}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if err := write(gin.H{"error": "unknown action"}); err != nil {
				return
			}
			continue
		}

		var reply any
		switch {
		case msg.MS != "":
			if user == nil {
				reply = gin.H{"error": "unknown action"}
				break
			}
			result := h.Router.Dispatch(user, msg.MS, msg.Endpoint, msg.Data)
			reply = gin.H{"tag": msg.Tag, "data": result}
		case user == nil:
			reply = h.anonymousAction(msg, logIn)
		default:
			reply = h.authenticatedAction(msg, user, token, logOut)
		}

		if err := write(reply); err != nil {
			return
		}
	}
}

func (h *WebSocketHandler) anonymousAction(msg clientMessage, logIn func(*model.User, string)) gin.H {
	switch msg.Action {
	case "register":
		reply, u, token := h.Account.Register(msg.Name, msg.Password)
		if u != nil {
			logIn(u, token)
		}
		return reply
	case "login":
		reply, u, token := h.Account.Login(msg.Name, msg.Password)
		if u != nil {
			logIn(u, token)
		}
		return reply
	case "session":
		reply, u, token := h.Account.Resume(msg.Token)
		if u != nil {
			logIn(u, token)
		}
		return reply
	case "status":
		return h.Account.Status()
	case "password":
		return h.Account.ChangePassword(msg.Name, msg.Password, msg.New)
	default:
		return gin.H{"error": "unknown action"}
	}
}

func (h *WebSocketHandler) authenticatedAction(msg clientMessage, user *model.User, token string, logOut func()) gin.H {
	switch msg.Action {
	case "logout":
		reply := h.Account.Logout(token)
		logOut()
		return reply
	case "info":
		return h.Account.Info(user)
	case "setting":
		return h.Account.Setting(user, msg.Key, msg.Value, msg.Delete)
	default:
		return gin.H{"error": "unknown action"}
	}
}
