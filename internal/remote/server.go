package remote

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/san-kum/obsview/internal/dynamo"
	"go.uber.org/zap"
)

type HandlerConfig struct {
	Logger *zap.Logger
	// NewStepper builds the stepper for one connection.
	NewStepper func() dynamo.Stepper
}

// Handler serves stepper calls, one stepper per connection.
type Handler struct {
	logger     *zap.Logger
	newStepper func() dynamo.Stepper
	upgrader   websocket.Upgrader
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return &Handler{
		logger:     logger,
		newStepper: cfg.NewStepper,
		upgrader:   upgrader,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("remote", r.RemoteAddr))
	stepper := h.newStepper()
	log.Info("stepper session opened")

	steps := 0
	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("read failed", zap.Error(err))
			}
			log.Info("stepper session closed", zap.Int("steps", steps))
			return
		}
		if kind != websocket.BinaryMessage {
			h.closeWith(conn, websocket.CloseUnsupportedData, "binary frames only")
			return
		}

		obs, action, err := DecodeRequest(payload)
		if err != nil {
			log.Warn("bad request", zap.Error(err))
			h.closeWith(conn, websocket.CloseProtocolError, err.Error())
			return
		}

		next, rotation, done, err := stepper.Step(obs, action)
		if err != nil {
			log.Error("step failed", zap.Int("steps", steps), zap.Error(err))
			h.closeWith(conn, websocket.CloseInternalServerErr, err.Error())
			return
		}
		steps++

		if err := conn.WriteMessage(websocket.BinaryMessage, EncodeReply(next, rotation, done)); err != nil {
			log.Warn("write failed", zap.Error(err))
			return
		}
	}
}

func (h *Handler) closeWith(conn *websocket.Conn, code int, reason string) {
	message := websocket.FormatCloseMessage(code, reason)
	conn.WriteMessage(websocket.CloseMessage, message)
}
