// internal/game/scheduler.go
//
// Drawer rotation: who draws next, what word options they get, and how the
// session advances from one turn to the next. These run under the session
// lock; timer callbacks they arm re-validate the round generation on entry.
package game

import (
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
)

// shufflePlayerOrder randomizes the drawer rotation in place.
func shufflePlayerOrder(order []string) {
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
}

// pruneOrder drops rotation entries that are no longer live members,
// keeping drawerIdx pointed at the same next candidate. Assumes lock is held.
func (s *Session) pruneOrder() {
	kept := s.order[:0]
	idx := s.drawerIdx
	for i, id := range s.order {
		if s.isLive(id) {
			kept = append(kept, id)
			continue
		}
		if i < idx {
			idx--
		}
	}
	s.order = kept
	if len(s.order) == 0 {
		s.drawerIdx = 0
		return
	}
	s.drawerIdx = idx % len(s.order)
}

// selectDrawer starts a new turn: prunes departed players, appoints the next
// drawer, deals word options, and arms the auto-pick grace timer. Creating
// the fresh RoundState bumps the generation, invalidating every timer armed
// for the previous turn. Assumes lock is held.
func (s *Session) selectDrawer() {
	s.cancelTimers()
	s.pruneOrder()

	if len(s.order) < 2 {
		log.Printf("Room %s: not enough players left to continue, ending game.", s.Room.ID)
		s.finishGame()
		return
	}

	drawerID := s.order[s.drawerIdx]
	drawer, ok := s.directory.Lookup(drawerID)
	if !ok {
		// Roster raced ahead of the rotation; retry with the entry gone.
		s.members = removeString(s.members, drawerID)
		s.selectDrawer()
		return
	}

	n := s.Room.Settings.WordOptions
	if n <= 0 {
		n = 3
	}
	opts := s.corpus.Sample(n)

	s.gen++
	s.round = &RoundState{
		Gen:          s.gen,
		DrawerConnID: drawerID,
		DrawerName:   drawer.UserName,
		WordOptions:  opts,
	}
	s.guesses = make(map[string]time.Time)
	s.state = StateWordPending

	log.Printf("Room %s: round %d/%d, drawer %s, options %v.",
		s.Room.ID, s.Room.CurrentRound, s.Room.Settings.Rounds, drawer.UserName, opts)

	s.fire(NewEvent(EventDrawerAssigned, P{
		"drawerName":   drawer.UserName,
		"drawerId":     drawerID,
		"currentRound": s.Room.CurrentRound,
		"totalRounds":  s.Room.Settings.Rounds,
	}))

	// The drawer gets its options; everyone else gets the spectator notice.
	for _, id := range s.members {
		if id == drawerID {
			s.fireTo(id, NewEvent(EventAssignedAsDrawer, P{
				"isDrawing":   true,
				"wordOptions": opts,
				"drawerName":  drawer.UserName,
			}))
		} else {
			s.fireTo(id, NewEvent(EventAssignedAsDrawer, P{
				"isDrawing":  false,
				"drawerName": drawer.UserName,
			}))
		}
	}

	// The previous round's drawing must not leak to late joiners.
	s.Room.Canvas.Clear()
	s.fire(NewEvent(EventClearCanvas, nil))

	gen := s.round.Gen
	s.graceTimer = time.AfterFunc(s.timing.WordGrace, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.round == nil || s.round.Gen != gen || s.state != StateWordPending {
			log.Printf("Room %s: stale word-grace timer fired. Ignoring.", s.Room.ID)
			return
		}
		if s.round.CurrentWord != "" {
			return
		}
		idx := s.corpus.PickIndex(len(s.round.WordOptions))
		log.Printf("Room %s: drawer %s did not pick in time, auto-selecting option %d.",
			s.Room.ID, s.round.DrawerName, idx)
		s.applyWord(idx)
	})
}

// advance moves the rotation forward after the leaderboard display. A full
// pass over the rotation completes a round; exhausting the configured rounds
// ends the game. Otherwise a settle delay, a round-change notice, and a short
// drawer delay lead into the next selection. Assumes lock is held.
func (s *Session) advance() {
	s.cancelTimers()
	s.pruneOrder()

	if len(s.order) < 2 {
		log.Printf("Room %s: fewer than 2 players after round, ending game.", s.Room.ID)
		s.finishGame()
		return
	}

	s.drawerIdx++
	roundFinished := s.drawerIdx >= len(s.order)
	if roundFinished {
		s.drawerIdx = 0
		if s.Room.CurrentRound >= s.Room.Settings.Rounds {
			s.finishGame()
			return
		}
		s.Room.CurrentRound++
	}

	s.state = StateDrawerSelection
	gen := s.gen

	s.settleTimer = time.AfterFunc(s.timing.Settle, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen || s.state != StateDrawerSelection {
			log.Printf("Room %s: stale settle timer fired. Ignoring.", s.Room.ID)
			return
		}
		s.Room.Canvas.Clear()
		s.fire(NewEvent(EventClearCanvas, nil))
		s.fire(NewEvent(EventGameState, P{
			"gameStarted":  true,
			"currentRound": s.Room.CurrentRound,
			"totalRounds":  s.Room.Settings.Rounds,
		}))
		s.fire(NewEvent(EventRoundChanged, P{
			"currentRound": s.Room.CurrentRound,
			"totalRounds":  s.Room.Settings.Rounds,
		}))
		s.drawerTimer = time.AfterFunc(s.timing.DrawerDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.gen != gen || s.state != StateDrawerSelection {
				log.Printf("Room %s: stale drawer-delay timer fired. Ignoring.", s.Room.ID)
				return
			}
			s.selectDrawer()
		})
	})
}

// finishGame ends the game and publishes the final standings. The room stays
// open with its round counter back at zero; the host can start a fresh game.
// Assumes lock is held.
func (s *Session) finishGame() {
	s.cancelTimers()
	s.state = StateGameOver
	s.Room.GameStarted = false
	s.Room.CurrentRound = 0
	s.round = nil
	s.guesses = make(map[string]time.Time)

	final := s.leaderboard()
	log.Printf("Room %s: game over, %d players on the final board.", s.Room.ID, len(final))

	s.fire(NewEvent(EventGameState, P{
		"gameStarted": false,
		"isGameOver":  true,
		"gameResults": final,
	}))
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
