package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"attendance/faces"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SendSocketFunc returns true if data was successfully sent
type SendSocketFunc func([]byte) bool

type ConnectedClient struct {
	fun SendSocketFunc
}

// ConnectedClients holds every open dashboard socket, keyed by connection ID
var ConnectedClients = cmap.New[*ConnectedClient]()

// DetectionsSocket pushes the detection payload to a dashboard client on
// every publish from the detection loop
func (a *API) DetectionsSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer conn.Close()

	// Setup client
	isConnected := true
	id := uuid.NewString()
	client := ConnectedClient{}
	client.fun = func(data []byte) bool {
		if !isConnected {
			return false
		}
		err := conn.WriteMessage(websocket.TextMessage, data)
		if err != nil {
			log.Println("write err:", err)
			isConnected = false
			return false
		}
		return true
	}
	ConnectedClients.Set(id, &client)
	defer ConnectedClients.Remove(id)
	// Main read cycle
	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			isConnected = false
			break
		}
		if string(message) == "ping" {
			conn.WriteMessage(mt, []byte("pong"))
		}
	}
}

// PublishDetections broadcasts the current detection list to all dashboard
// sockets. Wired as the detector's publish hook.
func PublishDetections(detections []faces.Detection) {
	if ConnectedClients.Count() == 0 {
		return
	}
	data, err := json.Marshal(gin.H{"faces": detectionList(detections)})
	if err != nil {
		return
	}
	for item := range ConnectedClients.IterBuffered() {
		item.Val.fun(data)
	}
}
