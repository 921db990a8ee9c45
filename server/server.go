// Package server exposes hosted games over HTTP: JSON endpoints for
// creating, joining and driving a game, plus a websocket event stream.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/minaorangina/rails/protocol"
	"github.com/minaorangina/rails/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type NewGameReq struct {
	Name string `json:"name"`
}

type PendingGameRes struct {
	GameID   string   `json:"game_id"`
	PlayerID string   `json:"player_id"`
	Name     string   `json:"name"`
	Admin    bool     `json:"is_admin"`
	Players  []string `json:"players"`
}

type JoinGameReq struct {
	GameID string `json:"game_id"`
	Name   string `json:"name"`
}

type StartGameReq struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

type GetGameRes struct {
	GameID  string   `json:"game_id"`
	Status  string   `json:"status"`
	Players []string `json:"players"`
}

type ActionRes struct {
	OK     bool             `json:"ok"`
	Prompt protocol.Message `json:"prompt"`
}

// GameServer hosts games from a store
type GameServer struct {
	store store.GameStore
	http.Server
}

// NewServer creates a new GameServer
func NewServer(st store.GameStore) *GameServer {
	s := new(GameServer)

	router := http.NewServeMux()
	router.Handle("/new", http.HandlerFunc(enableCors(s.HandleNewGame)))
	router.Handle("/game/", http.HandlerFunc(s.HandleFindGame))
	router.Handle("/join", http.HandlerFunc(enableCors(s.HandleJoinGame)))
	router.Handle("/start", http.HandlerFunc(enableCors(s.HandleStartGame)))
	router.Handle("/state", http.HandlerFunc(enableCors(s.HandleState)))
	router.Handle("/action", http.HandlerFunc(enableCors(s.HandleAction)))
	router.Handle("/ws", http.HandlerFunc(enableCors(s.HandleWS)))

	s.store = st
	s.Handler = router

	return s
}

// ServeHTTP serves http
func (g *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.Handler.ServeHTTP(w, r)
}

// HandleNewGame creates a new table with the requester seated first.
func (g *GameServer) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var data NewGameReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		writeParseError(err, w, r)
		return
	}
	if data.Name == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing player name"))
		return
	}

	gameID := NewGameID()
	playerID := NewID()
	table := store.NewTable(gameID, playerID)

	if err := g.store.AddInactiveGame(table); err != nil {
		log.Println(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if err := g.store.AddPendingPlayer(gameID, playerID, data.Name); err != nil {
		log.Println(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, PendingGameRes{
		GameID:   gameID,
		PlayerID: playerID,
		Name:     data.Name,
		Admin:    true,
		Players:  []string{data.Name},
	})
}

// HandleFindGame reports a game's status.
func (g *GameServer) HandleFindGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	gameID := strings.Replace(r.URL.Path, "/game/", "", 1)
	if gameID == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing game ID"))
		return
	}

	table := g.store.FindGame(gameID)
	if table == nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(unknownGameIDMsg(gameID)))
		return
	}

	status := "pending"
	if table.Started() {
		status = "active"
	}
	names := []string{}
	for _, p := range table.Players() {
		names = append(names, p.Name)
	}
	writeJSON(w, http.StatusOK, GetGameRes{GameID: gameID, Status: status, Players: names})
}

// HandleJoinGame seats a player at a pending table.
func (g *GameServer) HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var data JoinGameReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		writeParseError(err, w, r)
		return
	}
	if data.GameID == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing game ID"))
		return
	}
	if data.Name == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing player name"))
		return
	}

	table := g.store.FindInactiveGame(data.GameID)
	if table == nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(unknownGameIDMsg(data.GameID)))
		return
	}

	playerID := NewID()
	if err := g.store.AddPendingPlayer(data.GameID, playerID, data.Name); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	names := []string{}
	for _, p := range table.Players() {
		names = append(names, p.Name)
	}
	writeJSON(w, http.StatusOK, PendingGameRes{
		GameID:   data.GameID,
		PlayerID: playerID,
		Name:     data.Name,
		Players:  names,
	})
}

// HandleStartGame begins play. Only the table's creator may start it.
func (g *GameServer) HandleStartGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var data StartGameReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		writeParseError(err, w, r)
		return
	}

	table := g.store.FindInactiveGame(data.GameID)
	if table == nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(unknownGameIDMsg(data.GameID)))
		return
	}
	if data.PlayerID != table.CreatorID() {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("only the game's creator can start it"))
		return
	}

	if err := table.Start(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(err.Error()))
		return
	}

	prompt, _ := table.Prompt()
	writeJSON(w, http.StatusOK, ActionRes{OK: true, Prompt: prompt})
}

// HandleState returns the current prompt for a running game.
func (g *GameServer) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing game ID"))
		return
	}

	table := g.store.FindActiveGame(gameID)
	if table == nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(unknownGameIDMsg(gameID)))
		return
	}

	prompt, err := table.Prompt()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

// HandleAction submits one action to a running game.
func (g *GameServer) HandleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing game ID"))
		return
	}

	table := g.store.FindActiveGame(gameID)
	if table == nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(unknownGameIDMsg(gameID)))
		return
	}

	var action protocol.Action
	err := json.NewDecoder(r.Body).Decode(&action)
	defer r.Body.Close()
	if err != nil {
		writeParseError(err, w, r)
		return
	}

	prompt, ok := table.Submit(action)
	writeJSON(w, http.StatusOK, ActionRes{OK: ok, Prompt: prompt})
}

// HandleWS upgrades to a websocket: report lines and prompts stream
// out; actions come in as JSON.
func (g *GameServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	gameID := query.Get("game_id")
	if gameID == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing game ID"))
		return
	}
	playerID := query.Get("player_id")
	if playerID == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing player ID"))
		return
	}

	table := g.store.FindGame(gameID)
	if table == nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(unknownGameIDMsg(gameID)))
		return
	}
	if table.FindPendingPlayer(playerID) == nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("unknown player ID"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	events := table.Subscribe()
	go func() {
		for msg := range events {
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}()

	go func() {
		defer conn.Close()
		for {
			var action protocol.Action
			if err := conn.ReadJSON(&action); err != nil {
				return
			}
			table.Submit(action)
		}
	}()
}

func unknownGameIDMsg(unknownID string) string {
	return fmt.Sprintf("unknown game ID '%s'", unknownID)
}

func enableCors(handler http.HandlerFunc) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		handler.ServeHTTP(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		log.Println(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}

func writeParseError(err error, w http.ResponseWriter, r *http.Request) {
	if err == io.EOF {
		log.Println(err.Error())
		w.Header().Add("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing body"))
		return
	}
	if err != nil {
		log.Println(err.Error())
		w.Header().Add("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
	}
}
