package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"quiz-authoring-service/internal/app"
	"quiz-authoring-service/internal/domain"
	"quiz-authoring-service/internal/logger"
)

// WSHandler streams quiz change events to authoring clients.
type WSHandler struct {
	feed     *app.ChangeFeed
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(feed *app.ChangeFeed, log *logger.Logger) *WSHandler {
	return &WSHandler{
		feed: feed,
		log:  log.With("handler", "WSHandler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeWS upgrades the request and forwards every change event, optionally
// restricted to one quiz with ?quizId=. Inbound messages are ignored; the
// stream ends when the client closes the connection.
func (h *WSHandler) ServeWS(c *gin.Context) {
	quizID := c.Query("quizId")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := h.feed.Subscribe()
	defer cancel()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(outboundMessage{Type: "subscribed", Payload: map[string]string{"quizId": quizID}}); err != nil {
		return
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if !matches(event, quizID) {
				continue
			}
			if err := conn.WriteJSON(outboundMessage{Type: "quiz." + string(event.Type), Payload: event}); err != nil {
				h.log.Warn("ws write error", "error", err)
				return
			}
		case <-readerDone:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func matches(event domain.QuizEvent, quizID string) bool {
	return quizID == "" || event.QuizID == quizID
}
