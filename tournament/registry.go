package tournament

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrLookupNotFound is what a UserLookup returns when the username does not
// exist. Any other lookup error is treated as a connection failure.
var ErrLookupNotFound = errors.New("user not found")

// UserLookup resolves a username against the user base. Implemented outside
// this package (the registry never talks to the database directly).
type UserLookup interface {
	LookupUserByUsername(ctx context.Context, username string) (*Player, error)
}

type registrySlot struct {
	username string // as last entered, empty if untouched
	player   Player
	verified bool
	gen      uint64 // bumped on reset and on failed lookups, stale-response guard
}

// Registry collects and validates the 8 tournament entrants: slot 1 is the
// local user (always implicitly verified), slots 2..8 are resolved by lookup.
type Registry struct {
	mu     sync.Mutex
	lookup UserLookup
	local  Player
	slots  [NumPlayers + 1]registrySlot // 1-based, index 0 unused
}

func NewRegistry(local Player, lookup UserLookup) *Registry {
	local.Verified = true
	r := &Registry{
		lookup: lookup,
		local:  local,
	}
	r.slots[1] = registrySlot{username: local.Username, player: local, verified: true}
	return r
}

// Verify validates the username entered for a slot and resolves it against
// the user base. Checks run in a fixed order: empty, self, duplicate, then
// the remote lookup. The lookup runs without the lock held; its result is
// applied only if the slot is still unverified and untouched in the meantime,
// so an overlapping or stale response can never clobber a newer state.
func (r *Registry) Verify(ctx context.Context, slotIndex int, username string) (Player, error) {
	if slotIndex < 2 || slotIndex > NumPlayers {
		return Player{}, &InvariantError{Msg: "slot index out of range"}
	}

	username = strings.TrimSpace(username)

	r.mu.Lock()
	if r.slots[slotIndex].verified {
		// Idempotent: a verified slot is immutable until Reset.
		p := r.slots[slotIndex].player
		r.mu.Unlock()
		return p, nil
	}
	if username == "" {
		r.mu.Unlock()
		return Player{}, newValidationError(slotIndex, ReasonEmpty)
	}
	if strings.EqualFold(username, r.local.Username) {
		r.mu.Unlock()
		return Player{}, newValidationError(slotIndex, ReasonSelf)
	}
	for i := 2; i <= NumPlayers; i++ {
		if i == slotIndex {
			continue
		}
		if r.slots[i].username != "" && strings.EqualFold(r.slots[i].username, username) {
			r.mu.Unlock()
			return Player{}, newValidationError(slotIndex, ReasonDuplicate)
		}
	}
	r.slots[slotIndex].username = username
	gen := r.slots[slotIndex].gen
	r.mu.Unlock()

	resolved, err := r.lookup.LookupUserByUsername(ctx, username)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slots[slotIndex].gen != gen || r.slots[slotIndex].verified {
		// The slot was reset or verified while the lookup was in flight;
		// drop the stale response.
		if r.slots[slotIndex].verified {
			return r.slots[slotIndex].player, nil
		}
		return Player{}, newValidationError(slotIndex, ReasonConnection)
	}

	if err != nil {
		// Failed lookups leave the slot unverified so the user can retry.
		r.slots[slotIndex].username = ""
		r.slots[slotIndex].gen++
		if errors.Is(err, ErrLookupNotFound) {
			return Player{}, newValidationError(slotIndex, ReasonNotFound)
		}
		return Player{}, newValidationError(slotIndex, ReasonConnection)
	}

	player := *resolved
	player.Username = username
	player.Verified = true
	if player.DisplayName == "" {
		player.DisplayName = username
	}
	r.slots[slotIndex].player = player
	r.slots[slotIndex].verified = true
	return player, nil
}

// AllVerified reports whether all 7 remote slots are verified. The local user
// in slot 1 does not count: 7 remote + 1 local = 8 entrants.
func (r *Registry) AllVerified() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 2; i <= NumPlayers; i++ {
		if !r.slots[i].verified {
			return false
		}
	}
	return true
}

// Players returns the full entrant set once all slots are verified.
func (r *Registry) Players() ([]Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]Player, 0, NumPlayers)
	players = append(players, r.slots[1].player)
	for i := 2; i <= NumPlayers; i++ {
		if !r.slots[i].verified {
			return nil, &InvariantError{Msg: "not all slots verified"}
		}
		players = append(players, r.slots[i].player)
	}
	return players, nil
}

// Reset clears all remote slots (used when returning to the main menu). The
// generation bump invalidates any lookup still in flight.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 2; i <= NumPlayers; i++ {
		r.slots[i] = registrySlot{gen: r.slots[i].gen + 1}
	}
}

// LocalPlayer returns the slot-1 entrant.
func (r *Registry) LocalPlayer() Player {
	return r.local
}
