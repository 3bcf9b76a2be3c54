// letterdash scattergories game
//
// The host adds participants, generates balanced teams, and then runs the
// match: each team in turn gets a random letter, twelve random categories and
// a countdown, and tries to fill in one word per category before time runs out.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - First connection to a game becomes the host; everyone else spectates
// - Only the host may edit participants or drive the turn
// - A disconnected host hands control to another device after --host-timeout
// - Each game runs its own one-second ticker, serialized with host actions
// - Games auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/letterdash/games/scattergories"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

var (
	errNotHost     = errors.New("only the host can do that")
	errGameStarted = errors.New("the game has already started")
	errUnknownType = errors.New("unknown action")
	errNoIndex     = errors.New("missing participant index")
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // see applyLocked for the full list
	Name     string `json:"name,omitempty"`     // add_participant
	Index    *int   `json:"index,omitempty"`    // remove_participant
	Category string `json:"category,omitempty"` // set_draft / submit / retract
	Text     string `json:"text,omitempty"`     // set_draft
	Steps    int    `json:"steps,omitempty"`    // adjust_duration
}

// SessionInfoMessage is sent on connect and whenever the host changes, so the
// client knows whether to render controls.
type SessionInfoMessage struct {
	Type   string `json:"type"` // "session_info"
	GameID string `json:"game_id"`
	IsHost bool   `json:"is_host"`
}

// ErrorMessage is sent only to the client whose action was refused.
type ErrorMessage struct {
	Type    string `json:"type"`   // "error"
	Action  string `json:"action"` // the refused action
	Message string `json:"message"`
}

// GameStateMessage is broadcast after every change.
type GameStateMessage struct {
	Type              string                   `json:"type"`  // "game_state"
	Stage             string                   `json:"stage"` // "setup" or "playing"
	Participants      []string                 `json:"participants"`
	Teams             []scattergories.Team     `json:"teams"`
	CurrentTeam       int                      `json:"current_team"`
	RoundDuration     int                      `json:"round_duration"`
	MinTeamSize       int                      `json:"min_team_size"`
	Turn              *scattergories.TurnState `json:"turn,omitempty"`
	Leaders           []int                    `json:"leaders,omitempty"`
	HostConnected     bool                     `json:"host_connected"`
	LetterChangesLeft int                      `json:"letter_changes_left"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type actionRequest struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id      string
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	actions  chan actionRequest
	stop     chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex

	clock clockwork.Clock
	rng   scattergories.Source
	rules scattergories.Rules
	pool  scattergories.Pool

	createdAt    time.Time
	lastActive   time.Time
	hostPlayerID string

	setup   scattergories.Setup
	session *scattergories.Session
	playing bool

	ticker clockwork.Ticker
}

func newHub(gameID string, clock clockwork.Clock, rng scattergories.Source, rules scattergories.Rules, pool scattergories.Pool) *Hub {
	now := clock.Now()
	return &Hub{
		id:         gameID,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		actions:    make(chan actionRequest),
		stop:       make(chan struct{}),
		clock:      clock,
		rng:        rng,
		rules:      rules,
		pool:       pool,
		createdAt:  now,
		lastActive: now,
		session:    scattergories.NewSession(rng, rules),
	}
}

func (h *Hub) run(cfg *Config) {
	ticker := h.clock.NewTicker(time.Second)
	defer ticker.Stop()

	h.mu.Lock()
	h.ticker = ticker
	h.mu.Unlock()

	for {
		select {
		case c := <-h.register:
			h.handleRegister(c)

		case c := <-h.unreg:
			h.handleUnregister(cfg, c)

		case ar := <-h.actions:
			h.handleAction(cfg, ar)

		case <-ticker.Chan():
			h.handleTick(cfg)

		case <-h.stop:
			return
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = h.clock.Now()

	// First connection becomes host
	if h.hostPlayerID == "" {
		h.hostPlayerID = c.playerID
	}

	h.clients[c] = true

	h.deliverLocked(c, SessionInfoMessage{
		Type:   "session_info",
		GameID: h.id,
		IsHost: c.playerID == h.hostPlayerID,
	})
	h.broadcastStateLocked()
}

func (h *Hub) handleUnregister(cfg *Config, c *Client) {
	h.mu.Lock()

	h.lastActive = h.clock.Now()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	wasHost := c.playerID != "" && c.playerID == h.hostPlayerID && !h.connectedLocked(c.playerID)
	if wasHost {
		h.broadcastStateLocked()
	}

	h.mu.Unlock()

	if wasHost {
		go h.scheduleHandoff(cfg, c.playerID, cfg.hostTimeout)
	}
}

// realignTickerLocked restarts the countdown ticker so the next tick lands one
// full second after a turn starts or resumes. A tick already queued is dropped.
func (h *Hub) realignTickerLocked() {
	if h.ticker == nil {
		return
	}

	h.ticker.Reset(time.Second)
	select {
	case <-h.ticker.Chan():
	default:
	}
}

func (h *Hub) handleTick(cfg *Config) {
	h.mu.Lock()
	defer h.mu.Unlock()

	turn, ok := h.session.Turn()
	if !ok || turn.Phase != scattergories.PhaseActive {
		return
	}

	if h.session.Tick() {
		if team, ok := h.session.CurrentTeam(); ok {
			logf(cfg, "GAMES: Time's up for %q in %s", team.Name, h.id)
		}
	}

	h.broadcastStateLocked()
}

func (h *Hub) handleAction(cfg *Config, ar actionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = h.clock.Now()

	err := errNotHost
	if ar.client.playerID != "" && ar.client.playerID == h.hostPlayerID {
		err = h.applyLocked(cfg, ar.msg)
	}

	if err != nil {
		logf(cfg, "GAMES: Refused %q in %s: %v", ar.msg.Type, h.id, err)
		h.deliverLocked(ar.client, ErrorMessage{
			Type:    "error",
			Action:  ar.msg.Type,
			Message: err.Error(),
		})
		return
	}

	h.broadcastStateLocked()
}

// applyLocked performs one host action against the game. h.mu must be held.
func (h *Hub) applyLocked(cfg *Config, msg ClientMessage) error {
	switch msg.Type {
	case "add_participant", "remove_participant", "generate_teams", "reset_teams", "start_game":
		if h.playing {
			return errGameStarted
		}
	}

	switch msg.Type {
	case "add_participant":
		return h.setup.AddParticipant(msg.Name)

	case "remove_participant":
		if msg.Index == nil {
			return errNoIndex
		}
		return h.setup.RemoveParticipant(*msg.Index)

	case "generate_teams":
		teams, err := h.setup.GenerateTeams(h.rng, h.rules)
		if err != nil {
			return err
		}
		logf(cfg, "GAMES: Generated %d teams in %s", len(teams), h.id)
		return nil

	case "reset_teams":
		h.setup.ResetTeams()
		return nil

	case "start_game":
		teams := h.setup.Teams()
		if teams == nil {
			return scattergories.ErrNoTeams
		}
		if err := h.session.NewMatch(teams); err != nil {
			return err
		}
		h.playing = true
		logf(cfg, "GAMES: Started match with %d teams in %s", len(teams), h.id)
		return nil

	case "start_turn":
		if err := h.session.StartTurn(h.pool.Names()); err != nil {
			return err
		}
		h.realignTickerLocked()
		team, _ := h.session.CurrentTeam()
		turn, _ := h.session.Turn()
		logf(cfg, "GAMES: %q started a turn on letter %s in %s", team.Name, turn.Letter, h.id)
		return nil

	case "pause":
		return h.session.Pause()

	case "resume":
		if err := h.session.Resume(); err != nil {
			return err
		}
		h.realignTickerLocked()
		return nil

	case "change_letter":
		_, err := h.session.ChangeLetter()
		return err

	case "set_draft":
		return h.session.SetDraft(msg.Category, msg.Text)

	case "submit":
		return h.session.Submit(msg.Category)

	case "retract":
		return h.session.Retract(msg.Category)

	case "end_turn":
		if _, err := h.session.EndTurn(); err != nil {
			return err
		}
		return h.finalizeLocked(cfg)

	case "acknowledge_expiry":
		if _, err := h.session.AcknowledgeExpiry(); err != nil {
			return err
		}
		return h.finalizeLocked(cfg)

	case "adjust_duration":
		return h.session.AdjustRoundDuration(msg.Steps)

	case "restart":
		if !h.session.Started() {
			return scattergories.ErrNoMatch
		}
		h.session.Restart()
		logf(cfg, "GAMES: Restarted match in %s", h.id)
		return nil
	}

	return fmt.Errorf("%w: %q", errUnknownType, msg.Type)
}

func (h *Hub) finalizeLocked(cfg *Config) error {
	team, _ := h.session.CurrentTeam()

	score, err := h.session.FinalizeTurn()
	if err != nil {
		return err
	}

	logf(cfg, "GAMES: %q scored %d in %s", team.Name, score, h.id)
	return nil
}

// scheduleHandoff waits for d, and if the host still has no connected client,
// promotes one of the remaining players.
func (h *Hub) scheduleHandoff(cfg *Config, playerID string, d time.Duration) {
	select {
	case <-h.clock.After(d):
	case <-h.stop:
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.handoffLocked(cfg, playerID)
}

// handoffLocked moves host control away from playerID if that player is
// still the host and has no connected client. h.mu must be held.
func (h *Hub) handoffLocked(cfg *Config, playerID string) bool {
	if h.hostPlayerID != playerID || h.connectedLocked(playerID) {
		return false
	}

	var next *Client
	for c := range h.clients {
		if c.playerID != "" {
			next = c
			break
		}
	}
	if next == nil {
		return false
	}

	h.hostPlayerID = next.playerID
	logf(cfg, "GAMES: Host control passed to a new device in %s", h.id)

	for c := range h.clients {
		h.deliverLocked(c, SessionInfoMessage{
			Type:   "session_info",
			GameID: h.id,
			IsHost: c.playerID == h.hostPlayerID,
		})
	}
	h.broadcastStateLocked()

	return true
}

func (h *Hub) connectedLocked(playerID string) bool {
	for c := range h.clients {
		if c.playerID == playerID {
			return true
		}
	}
	return false
}

func (h *Hub) stateLocked() GameStateMessage {
	msg := GameStateMessage{
		Type:          "game_state",
		Stage:         "setup",
		Participants:  h.setup.Participants(),
		Teams:         h.setup.Teams(),
		RoundDuration: h.session.RoundDuration(),
		MinTeamSize:   h.rules.MinTeamSize,
		HostConnected: h.connectedLocked(h.hostPlayerID),
	}

	if !h.playing {
		return msg
	}

	msg.Stage = "playing"
	msg.Teams = h.session.Roster()
	msg.CurrentTeam = h.session.CurrentTeamIndex()
	msg.Leaders = h.session.Leaders()
	if team, ok := h.session.CurrentTeam(); ok {
		msg.LetterChangesLeft = team.LetterChangesLeft
	}
	if turn, ok := h.session.Turn(); ok {
		msg.Turn = &turn
	}

	return msg
}

func (h *Hub) broadcastStateLocked() {
	msg := h.stateLocked()
	for client := range h.clients {
		h.deliverLocked(client, msg)
	}
}

// deliverLocked queues msg for c, dropping the client if its buffer is full.
func (h *Hub) deliverLocked(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		if _, ok := h.clients[c]; ok {
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// closeAll disconnects all clients of this hub and stops its loop (used by reaper).
func (h *Hub) closeAll() {
	h.stopOnce.Do(func() { close(h.stop) })

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "letterdash_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration

	clock clockwork.Clock
	rules scattergories.Rules
	pool  scattergories.Pool
	rng   func() scattergories.Source
}

func newGameManager(clock clockwork.Clock, idleTimeout time.Duration, rules scattergories.Rules, pool scattergories.Pool) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: idleTimeout,
		clock:       clock,
		rules:       rules,
		pool:        pool,
		rng:         scattergories.DefaultSource,
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(gameID, gm.clock, gm.rng(), gm.rules, gm.pool)
	gm.hubs[gameID] = hub
	go hub.run(cfg)
	return hub
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reapIdle removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reapIdle() int {
	cutoff := gm.clock.Now().Add(-gm.idleTimeout)
	reaped := 0

	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		hub.mu.RLock()
		last := hub.lastActive
		hub.mu.RUnlock()

		if last.Before(cutoff) {
			delete(gm.hubs, id)
			go hub.closeAll()
			reaped++
		}
	}

	return reaped
}

func (gm *GameManager) reaperLoop() {
	ticker := gm.clock.NewTicker(gm.idleTimeout / 2)
	for range ticker.Chan() {
		gm.reapIdle()
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)

		hub := gm.getHub(cfg, gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 16),
			playerID: playerID,
		}

		select {
		case hub.register <- client:
		case <-hub.stop:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.stop:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.actions <- actionRequest{client: c, msg: msg}:
		case <-h.stop:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// serveCategories returns the category pool with example answers, for the
// in-game reference guide.
func serveCategories(cfg *Config, pool scattergories.Pool, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := json.Marshal(pool)
		if err != nil {
			http.Error(w, "category encoding failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(cfg, w)

		if _, err := w.Write(data); err != nil {
			errs <- err
		}
	}
}

var indexTemplate = template.Must(template.ParseFS(assets, "assets/scattergories/index.html"))

// getIndexHandler renders the game client with links under cfg.prefix.
func getIndexHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var page bytes.Buffer
		if err := indexTemplate.Execute(&page, struct{ Prefix string }{cfg.prefix}); err != nil {
			errs <- err
			http.Error(w, "missing client", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		if _, err := page.WriteTo(w); err != nil {
			errs <- err
		}
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerScattergoriesGame sets up routes so that:
//   - $path                     → redirects to new random game (8-char ID)
//   - $path/:gameid             → HTML client
//   - $path/:gameid/ws          → WebSocket for that game
//   - $path/:gameid/qr          → PNG QR code for that game URL
//   - $path/:gameid/categories  → category reference guide
func registerScattergoriesGame(cfg *Config, path string, mux *httprouter.Router, gm *GameManager, errs chan<- error) {
	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg, errs))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)

	mux.GET(cfg.prefix+path+"/:gameid/categories", serveCategories(cfg, gm.pool, errs))
}
