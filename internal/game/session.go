// internal/game/session.go
package game

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/drawdash/drawdash/internal/models"
	"github.com/drawdash/drawdash/internal/room"
	"github.com/drawdash/drawdash/internal/words"
)

// State identifies where a room's session is in the round lifecycle.
type State int

const (
	StateIdle State = iota
	StateCountdown
	StateDrawerSelection
	StateWordPending
	StateDrawing
	StateRoundComplete
	StateLeaderboard
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCountdown:
		return "countdown"
	case StateDrawerSelection:
		return "drawer_selection"
	case StateWordPending:
		return "word_pending"
	case StateDrawing:
		return "drawing"
	case StateRoundComplete:
		return "round_complete"
	case StateLeaderboard:
		return "leaderboard"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Sentinel errors surfaced to clients as explicit error events.
var (
	ErrRoomFull         = errors.New("room is full")
	ErrNotHost          = errors.New("not authorized: host only")
	ErrNotDrawer        = errors.New("not authorized: drawer only")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start game")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrInvalidWordIndex = errors.New("invalid word index")
	ErrUnknownPlayer    = errors.New("unknown player")
)

// Timing bundles the session's fixed delays; tests shrink them.
type Timing struct {
	Countdown   time.Duration // startGame countdown before first drawer
	WordGrace   time.Duration // drawer's window to pick a word
	Leaderboard time.Duration // round leaderboard display
	Settle      time.Duration // gap before the round-change notice
	DrawerDelay time.Duration // gap between round-change notice and selection
}

// DefaultTiming returns the production delays.
func DefaultTiming() Timing {
	return Timing{
		Countdown:   5 * time.Second,
		WordGrace:   5 * time.Second,
		Leaderboard: 5 * time.Second,
		Settle:      time.Second,
		DrawerDelay: 500 * time.Millisecond,
	}
}

// RoundState holds everything about the active round. A fresh one is created
// at each drawer selection; Gen strictly increases so stale timer callbacks
// can recognize themselves and bail.
type RoundState struct {
	Gen            int
	DrawerConnID   string
	DrawerName     string
	WordOptions    []string
	CurrentWord    string
	WordSelectedAt time.Time
	RoundStartAt   time.Time

	drawerScored bool
}

// Session is the per-room state machine. All inbound events for the room are
// funneled through its mutex, so ordinary mutations are serialized; timer
// callbacks re-acquire the lock and validate their captured generation first.
type Session struct {
	Room *room.Room

	mu    sync.Mutex
	state State

	// members holds live connection ids in join order; the first remaining
	// member inherits the host role when the host is gone.
	members []string

	// order is the drawer rotation fixed (shuffled) at game start;
	// drawerIdx walks it, wrapping at each full pass.
	order     []string
	drawerIdx int

	round   *RoundState
	gen     int
	guesses map[string]time.Time // connID -> correct-guess time, current round only

	countdownTimer   *time.Timer
	graceTimer       *time.Timer
	leaderboardTimer *time.Timer
	settleTimer      *time.Timer
	drawerTimer      *time.Timer

	directory *room.Directory
	corpus    *words.Corpus
	timing    Timing

	// BroadcastFn sends an event to every member. UnicastFn sends to one
	// connection. Both must be non-blocking; nil fns drop events (tests).
	BroadcastFn func(ev Event)
	UnicastFn   func(connID string, ev Event)
}

// NewSession wires a session over a registry-owned room.
func NewSession(rm *room.Room, dir *room.Directory, corpus *words.Corpus, timing Timing) *Session {
	return &Session{
		Room:      rm,
		state:     StateIdle,
		guesses:   make(map[string]time.Time),
		directory: dir,
		corpus:    corpus,
		timing:    timing,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// MemberCount returns the number of live members.
func (s *Session) MemberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}

// Members returns a snapshot of live connection ids in join order.
func (s *Session) Members() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.members))
	copy(out, s.members)
	return out
}

// fire sends an event to all members. Assumes lock is held.
func (s *Session) fire(ev Event) {
	if s.BroadcastFn != nil {
		s.BroadcastFn(ev)
	}
}

// fireTo sends an event to one member. Assumes lock is held.
func (s *Session) fireTo(connID string, ev Event) {
	if s.UnicastFn != nil {
		s.UnicastFn(connID, ev)
	}
}

// fireExcept sends an event to every member but one. Assumes lock is held.
func (s *Session) fireExcept(exclude string, ev Event) {
	if s.UnicastFn == nil {
		return
	}
	for _, id := range s.members {
		if id != exclude {
			s.UnicastFn(id, ev)
		}
	}
}

// Join adds a live connection to the room roster. asHost marks the creator
// (or a reclaiming host) as privileged.
func (s *Session) Join(p *models.Player, asHost bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.members) >= s.Room.Settings.MaxPlayers {
		return ErrRoomFull
	}

	s.directory.Register(p)
	s.members = append(s.members, p.ConnID)

	if asHost {
		s.Room.HostConnID = p.ConnID
		s.Room.NeedsNewHost = false
		p.IsHost = true
	}

	log.Printf("Room %s: %s joined (host=%v, members=%d).", s.Room.ID, p.UserName, asHost, len(s.members))
	s.refreshRoster()
	return nil
}

// Leave removes a connection from the roster, marking the room for host
// reassignment when the host walks away. The next roster recomputation picks
// the replacement.
func (s *Session) Leave(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeMember(connID)
	s.refreshRoster()
}

// removeMember drops a connection from members and flags host loss.
// Assumes lock is held.
func (s *Session) removeMember(connID string) {
	for i, id := range s.members {
		if id == connID {
			s.members = append(s.members[:i], s.members[i+1:]...)
			break
		}
	}
	if s.Room.HostConnID == connID {
		s.Room.NeedsNewHost = true
	}
}

// refreshRoster recomputes host assignment and broadcasts the roster. The
// host is reassigned lazily here: whenever the recorded host is absent from
// the live set, the first remaining member inherits the role and is notified.
// Assumes lock is held.
func (s *Session) refreshRoster() {
	needsHost := s.Room.NeedsNewHost || !s.isLive(s.Room.HostConnID)
	if needsHost && len(s.members) > 0 {
		newHost := s.members[0]
		s.Room.HostConnID = newHost
		s.Room.NeedsNewHost = false
		if p, ok := s.directory.Lookup(newHost); ok {
			p.IsHost = true
			log.Printf("Room %s: assigned new host %s.", s.Room.ID, p.UserName)
		}
		s.fireTo(newHost, NewEvent(EventHostAssigned, P{"isHost": true}))
	}

	users := s.roster()
	s.fire(NewEvent(EventRoomUsers, P{"users": users}))
}

// roster builds the member list in join order with host flags reconciled
// against the room's host pointer. Assumes lock is held.
func (s *Session) roster() []models.RoomUser {
	users := make([]models.RoomUser, 0, len(s.members))
	for _, connID := range s.members {
		p, ok := s.directory.Lookup(connID)
		if !ok {
			continue
		}
		isHost := connID == s.Room.HostConnID
		if p.IsHost != isHost {
			p.IsHost = isHost
		}
		users = append(users, models.RoomUser{
			UserName: p.UserName,
			Avatar:   p.Avatar,
			Points:   p.Points,
			IsHost:   isHost,
			UserID:   p.UserID.String(),
		})
	}
	return users
}

// leaderboard is the roster sorted by points, descending. Assumes lock is held.
func (s *Session) leaderboard() []models.RoomUser {
	users := s.roster()
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Points > users[j].Points
	})
	return users
}

func (s *Session) isLive(connID string) bool {
	if connID == "" {
		return false
	}
	for _, id := range s.members {
		if id == connID {
			return true
		}
	}
	return false
}

// StartGame begins a game: host-gated, needs at least two live members.
// Broadcasts the countdown and schedules the first drawer selection.
func (s *Session) StartGame(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if connID != s.Room.HostConnID {
		return ErrNotHost
	}
	if s.Room.GameStarted {
		return ErrGameInProgress
	}
	if len(s.members) < 2 {
		return ErrNotEnoughPlayers
	}

	s.cancelTimers()
	s.Room.GameStarted = true
	s.Room.CurrentRound = 1

	// Fix the drawer rotation for the whole game.
	s.order = make([]string, len(s.members))
	copy(s.order, s.members)
	shufflePlayerOrder(s.order)
	s.drawerIdx = 0
	s.guesses = make(map[string]time.Time)

	s.state = StateCountdown
	log.Printf("Room %s: game started with %d players, %d rounds.", s.Room.ID, len(s.order), s.Room.Settings.Rounds)

	s.fire(NewEvent(EventGameState, P{
		"gameStarted":  true,
		"countdown":    int(s.timing.Countdown.Seconds()),
		"currentRound": s.Room.CurrentRound,
		"totalRounds":  s.Room.Settings.Rounds,
	}))

	gen := s.gen
	s.countdownTimer = time.AfterFunc(s.timing.Countdown, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen || s.state != StateCountdown {
			log.Printf("Room %s: stale countdown timer fired. Ignoring.", s.Room.ID)
			return
		}
		s.selectDrawer()
	})
	return nil
}

// SelectWord handles the drawer's explicit pick. Re-selecting after a word is
// already chosen is an idempotent no-op.
func (s *Session) SelectWord(connID string, wordIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil || s.round.DrawerConnID != connID {
		return ErrNotDrawer
	}
	if s.round.CurrentWord != "" {
		log.Printf("Room %s: word already chosen, ignoring duplicate selectWord.", s.Room.ID)
		return nil
	}
	if s.state != StateWordPending {
		return nil
	}
	if wordIndex < 0 || wordIndex >= len(s.round.WordOptions) {
		return ErrInvalidWordIndex
	}

	s.stopTimer(&s.graceTimer)
	s.applyWord(wordIndex)
	return nil
}

// applyWord commits a word choice (explicit or auto-picked) and moves the
// round into Drawing. Assumes lock is held.
func (s *Session) applyWord(wordIndex int) {
	word := s.round.WordOptions[wordIndex]
	now := time.Now()
	s.round.CurrentWord = word
	s.round.WordSelectedAt = now
	s.round.RoundStartAt = now
	s.state = StateDrawing

	log.Printf("Room %s: word %q selected for drawer %s.", s.Room.ID, word, s.round.DrawerName)

	s.fireTo(s.round.DrawerConnID, NewEvent(EventWordSelected, P{"word": word}))
	s.fire(NewEvent(EventGameState, P{
		"wordSelected":  true,
		"currentDrawer": s.round.DrawerName,
	}))
	s.fireExcept(s.round.DrawerConnID, NewEvent(EventWordSelected, P{
		"length": len(word),
		"hint":   maskWord(word),
	}))

	// Fresh canvas for the new word.
	s.Room.Canvas.Clear()
	s.fire(NewEvent(EventClearCanvas, nil))
}

// Guess handles a submitted guess: relays it to the room, rejects the
// drawer's attempts with a system notice, and registers correct guesses.
func (s *Session) Guess(connID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.directory.Lookup(connID)
	if !ok {
		return
	}

	if s.round != nil && s.round.DrawerConnID == connID {
		s.fireTo(connID, NewEvent(EventGuess, P{
			"user":  "System",
			"guess": "You are the drawer! You can't guess.",
		}))
		return
	}

	// Every guess is public chat, right or wrong.
	s.fireExcept(connID, NewEvent(EventGuess, P{
		"user":  p.UserName,
		"guess": text,
	}))

	if s.state != StateDrawing || s.round == nil || s.round.CurrentWord == "" {
		return
	}
	if !strings.EqualFold(strings.TrimSpace(text), s.round.CurrentWord) {
		return
	}
	s.registerCorrectGuess(connID, p)
}

// RegisterCorrect is the idempotent alternate entry for a correct guess: the
// client asserts the word, the session re-validates it against the round.
func (s *Session) RegisterCorrect(connID, word string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDrawing || s.round == nil || s.round.CurrentWord == "" {
		return
	}
	if !strings.EqualFold(strings.TrimSpace(word), s.round.CurrentWord) {
		return
	}
	if s.round.DrawerConnID == connID {
		return
	}
	p, ok := s.directory.Lookup(connID)
	if !ok {
		return
	}
	s.registerCorrectGuess(connID, p)
}

// registerCorrectGuess records a first correct guess, awards points, and
// short-circuits the round when everyone has it. Assumes lock is held.
func (s *Session) registerCorrectGuess(connID string, p *models.Player) {
	if _, done := s.guesses[connID]; done {
		log.Printf("Room %s: %s already guessed correctly this round.", s.Room.ID, p.UserName)
		return
	}

	guessTime := time.Now()
	s.guesses[connID] = guessTime

	points := GuesserScore(s.round.RoundStartAt, guessTime, s.Room.Settings.RoundTime)
	s.directory.AddPoints(connID, points)
	s.directory.SaveProgress(connID)

	log.Printf("Room %s: %s guessed %q correctly for %d points.", s.Room.ID, p.UserName, s.round.CurrentWord, points)

	s.fire(NewEvent(EventRoomUsers, P{"users": s.leaderboard()}))

	correct, total := s.guessProgress()
	allGuessed := total > 0 && correct >= total

	s.fire(NewEvent(EventGuessedCorrectly, P{
		"user":                p.UserName,
		"points":              points,
		"allGuessedCorrectly": allGuessed,
	}))

	if allGuessed {
		log.Printf("Room %s: all %d guesser(s) correct, ending round early.", s.Room.ID, total)
		s.completeRound(P{"allGuessedCorrectly": true, "immediate": true})
	}
}

// guessProgress counts correct guesses against currently-connected
// non-drawer members. Assumes lock is held.
func (s *Session) guessProgress() (correct, total int) {
	for _, id := range s.members {
		if s.round != nil && id == s.round.DrawerConnID {
			continue
		}
		total++
		if _, ok := s.guesses[id]; ok {
			correct++
		}
	}
	return correct, total
}

// TimerComplete signals round-time exhaustion from the client-side clock.
// Arriving after the round already completed it is a no-op.
func (s *Session) TimerComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDrawing || s.round == nil || s.round.CurrentWord == "" {
		log.Printf("Room %s: timerComplete ignored in state %s.", s.Room.ID, s.state)
		return
	}
	s.completeRound(P{"timeExpired": true})
}

// CompleteRound is the host-driven round end, feeding the same canonical
// completion path as the timeout signal.
func (s *Session) CompleteRound(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if connID != s.Room.HostConnID {
		return ErrNotHost
	}
	if s.state != StateDrawing || s.round == nil || s.round.CurrentWord == "" {
		return nil
	}
	s.completeRound(nil)
	return nil
}

// completeRound scores the drawer, reveals the word, shows the leaderboard,
// and schedules the advance. Extra payload fields annotate the reveal
// (timeExpired / allGuessedCorrectly). Assumes lock is held.
func (s *Session) completeRound(extra P) {
	s.cancelTimers()
	s.state = StateRoundComplete

	s.scoreDrawer()

	payload := P{"word": s.round.CurrentWord, "autoCompleted": true}
	for k, v := range extra {
		payload[k] = v
	}
	s.fire(NewEvent(EventRoundComplete, payload))
	s.fire(NewEvent(EventRoomUsers, P{"users": s.leaderboard()}))
	s.fire(NewEvent(EventShowLeaderboard, P{
		"leaderboard": s.leaderboard(),
		"duration":    s.timing.Leaderboard.Milliseconds(),
	}))

	s.state = StateLeaderboard
	gen := s.round.Gen
	s.leaderboardTimer = time.AfterFunc(s.timing.Leaderboard, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state != StateLeaderboard || s.round == nil || s.round.Gen != gen {
			log.Printf("Room %s: stale leaderboard timer fired. Ignoring.", s.Room.ID)
			return
		}
		s.advance()
	})
}

// scoreDrawer awards the drawer exactly once per round, based on how many
// guessers got the word and how fast on average. Both counts and the average
// cover the currently-connected guessers only, so departed players cannot
// push the score past its bound. Assumes lock is held.
func (s *Session) scoreDrawer() {
	if s.round.drawerScored {
		return
	}
	correct, total := s.guessProgress()
	if correct == 0 || total == 0 {
		return
	}
	s.round.drawerScored = true

	var sum time.Duration
	for _, id := range s.members {
		if id == s.round.DrawerConnID {
			continue
		}
		if at, ok := s.guesses[id]; ok {
			sum += at.Sub(s.round.RoundStartAt)
		}
	}
	avgSeconds := sum.Seconds() / float64(correct)

	points := DrawerScore(correct, total, avgSeconds, s.Room.Settings.RoundTime)
	if points == 0 {
		return
	}

	drawer, ok := s.directory.Lookup(s.round.DrawerConnID)
	if !ok {
		return
	}
	s.directory.AddPoints(s.round.DrawerConnID, points)
	s.directory.SaveProgress(s.round.DrawerConnID)

	log.Printf("Room %s: drawer %s earned %d points.", s.Room.ID, drawer.UserName, points)
	s.fire(NewEvent(EventDrawerPoints, P{
		"user":   drawer.UserName,
		"points": points,
	}))
}

// UpdateSettings merges a partial settings update, host-gated.
func (s *Session) UpdateSettings(connID string, partial models.RoomSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if connID != s.Room.HostConnID {
		return ErrNotHost
	}
	s.Room.Settings = s.Room.Settings.Merge(partial)
	log.Printf("Room %s: settings updated: %+v", s.Room.ID, s.Room.Settings)
	s.fire(NewEvent(EventSettingsUpdated, P{
		"maxPlayers":  s.Room.Settings.MaxPlayers,
		"roundTime":   s.Room.Settings.RoundTime,
		"rounds":      s.Room.Settings.Rounds,
		"wordOptions": s.Room.Settings.WordOptions,
	}))
	return nil
}

// HandleDisconnect drops a connection from the roster without touching any
// timers owned by other players' turns. Saved-progress bookkeeping happens in
// the reconnection supervisor before this is called.
func (s *Session) HandleDisconnect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("Room %s: handling disconnect for %s.", s.Room.ID, connID)
	s.removeMember(connID)
	s.refreshRoster()
}

// RefreshRoster recomputes host assignment and rebroadcasts the roster.
func (s *Session) RefreshRoster() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshRoster()
}

// RosterPayload answers getRoomUsers.
func (s *Session) RosterPayload() P {
	s.mu.Lock()
	defer s.mu.Unlock()
	return P{"users": s.roster()}
}

// GameStatePayload answers requestGameState.
func (s *Session) GameStatePayload() P {
	s.mu.Lock()
	defer s.mu.Unlock()
	return P{
		"gameStarted":  s.Room.GameStarted,
		"currentRound": s.Room.CurrentRound,
		"totalRounds":  s.Room.Settings.Rounds,
	}
}

// SettingsPayload answers requestRoomSettings.
func (s *Session) SettingsPayload() P {
	s.mu.Lock()
	defer s.mu.Unlock()
	return P{
		"maxPlayers":  s.Room.Settings.MaxPlayers,
		"roundTime":   s.Room.Settings.RoundTime,
		"rounds":      s.Room.Settings.Rounds,
		"wordOptions": s.Room.Settings.WordOptions,
	}
}

// DrawerInfoPayload answers getDrawerInfo for the given connection: the
// drawer gets its options (or the chosen word), everyone else the public
// view.
func (s *Session) DrawerInfoPayload(connID string) P {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil {
		return P{
			"isCurrentDrawer": false,
			"drawerName":      nil,
			"wordSelected":    false,
		}
	}

	isDrawer := connID == s.round.DrawerConnID
	selected := s.round.CurrentWord != ""
	out := P{
		"isCurrentDrawer": isDrawer,
		"drawerName":      s.round.DrawerName,
		"drawerId":        s.round.DrawerConnID,
		"wordSelected":    selected,
	}
	if isDrawer {
		if selected {
			out["word"] = s.round.CurrentWord
		} else {
			out["wordOptions"] = s.round.WordOptions
		}
	} else if selected {
		out["wordLength"] = len(s.round.CurrentWord)
	}
	return out
}

// WordOptionsPayload answers requestWordOptions, drawer-only.
func (s *Session) WordOptionsPayload(connID string) (P, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil || s.round.DrawerConnID != connID {
		return nil, ErrNotDrawer
	}
	return P{"wordOptions": s.round.WordOptions}, nil
}

// IsDrawer reports whether the connection is the active round's drawer.
func (s *Session) IsDrawer(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round != nil && s.round.DrawerConnID == connID
}

// stopTimer stops and clears a timer slot. Assumes lock is held.
func (s *Session) stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// cancelTimers stops every pending timer; called on any transition that
// supersedes them. Assumes lock is held.
func (s *Session) cancelTimers() {
	s.stopTimer(&s.countdownTimer)
	s.stopTimer(&s.graceTimer)
	s.stopTimer(&s.leaderboardTimer)
	s.stopTimer(&s.settleTimer)
	s.stopTimer(&s.drawerTimer)
}

// Close cancels all timers, used when the room is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimers()
}

// maskWord replaces letters with underscores, leaving other runes intact.
func maskWord(word string) string {
	out := []rune(word)
	for i, r := range out {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			out[i] = '_'
		}
	}
	return string(out)
}
