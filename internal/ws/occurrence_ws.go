package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"church_backend/internal/models"
	"church_backend/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Hub хранит подключения клиентов, сгруппированные по домену (prayer/event).
type Hub struct {
	// Для каждого домена храним множество подключений.
	clients map[string]map[*Client]bool
	// Канал для регистрации нового клиента.
	register chan *Client
	// Канал для удаления клиента.
	unregister chan *Client
	// Канал для трансляции сообщений по конкретному домену.
	broadcast chan BroadcastMessage
	// Mutex для защиты карты клиентов.
	mu sync.RWMutex
}

// BroadcastMessage представляет сообщение для рассылки подписчикам домена.
type BroadcastMessage struct {
	Domain  string
	Message []byte
}

// WSMessage — событие жизненного цикла вхождения для клиентов.
type WSMessage struct {
	EventType string                 `json:"event_type"` // occurrences_created, occurrence_updated, occurrence_deleted, occurrence_status_changed
	Domain    string                 `json:"domain"`
	Data      map[string]interface{} `json:"data"`
}

// Создаем глобальный экземпляр хаба.
var HubInstance = NewHub()

// NewHub создает новый Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastMessage),
	}
}

// Run запускает цикл обработки каналов хаба.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Domain] == nil {
				h.clients[client.Domain] = make(map[*Client]bool)
			}
			h.clients[client.Domain][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.Domain]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.Domain)
					}
				}
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.RLock()
			if clients, ok := h.clients[message.Domain]; ok {
				for client := range clients {
					select {
					case client.Send <- message.Message:
					default:
						close(client.Send)
						delete(clients, client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastWSMessage сериализует событие и рассылает его подписчикам домена.
func (h *Hub) BroadcastWSMessage(msg WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Println("Ошибка сериализации WS сообщения:", err)
		return
	}
	h.broadcast <- BroadcastMessage{Domain: msg.Domain, Message: payload}
}

// Client представляет одно подключение через WebSocket.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	Domain string
}

// readPump читает сообщения из WebSocket-соединения.
// Входящие сообщения не обрабатываются — отслеживается только разрыв соединения.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump отправляет сообщения клиенту из канала Send.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Канал закрыт.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			// Отправка ping-сообщения для поддержания соединения.
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Настраиваем апгрейдер для WebSocket с разрешением всех источников.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// OccurrenceWebSocketHandler обновляет соединение до WebSocket и подписывает
// клиента на события домена. URL-пример: /ws/prayer
func OccurrenceWebSocketHandler(c *gin.Context) {
	domain := c.Param("domain")
	if domain != models.DomainPrayer && domain != models.DomainEvent {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_DOMAIN",
			Message: "Неизвестный домен: ожидается prayer или event",
		})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		http.Error(c.Writer, "Ошибка обновления до WebSocket", http.StatusInternalServerError)
		return
	}
	client := &Client{
		Hub:    HubInstance,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Domain: domain,
	}
	HubInstance.register <- client

	go client.writePump()
	client.readPump()
}
