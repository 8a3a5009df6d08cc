package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/geocode"
)

// LocationSocketController streams keystrokes through the debounced
// autocomplete, one session per connection. The client just forwards input as
// it is typed; the server decides when a lookup is worth firing.
type LocationSocketController struct {
	Client geocode.Searcher
	Quiet  time.Duration
}

func NewLocationSocketController(client geocode.Searcher) *LocationSocketController {
	return &LocationSocketController{Client: client, Quiet: geocode.DefaultQuietPeriod}
}

var locationUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type locationInputFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type locationSuggestionsFrame struct {
	Type    string           `json:"type"`
	Query   string           `json:"query"`
	Results []geocode.Result `json:"results"`
	Error   string           `json:"error,omitempty"`
}

func (ctl *LocationSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := locationUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		ac := geocode.NewAutocomplete(ctl.Client, geocode.WithQuietPeriod(ctl.Quiet))
		defer ac.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for s := range ac.Updates() {
				frame := locationSuggestionsFrame{
					Type:    "suggestions",
					Query:   s.Query,
					Results: s.Results,
				}
				if frame.Results == nil {
					frame.Results = []geocode.Result{}
				}
				if s.Err != nil {
					frame.Error = "location service unavailable"
				}
				payload, err := json.Marshal(frame)
				if err != nil {
					continue
				}
				if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		}()

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				break
			}
			var frame locationInputFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				continue
			}
			switch frame.Type {
			case "input":
				ac.Input(frame.Text)
			case "clear":
				ac.Clear()
			}
		}

		ac.Close()
		<-done
	}
}
