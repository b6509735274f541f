package ws

import "sync"

// Registry tracks which connections are currently in which rooms. It keeps
// two indices — room→connections and connection→rooms — that are always
// mutated together under one lock, so a disconnecting connection can be
// removed from every room it occupied without the transport's help.
//
// A room entry with an empty member set is deleted immediately; no room id
// ever maps to an empty set at rest. All methods are safe for concurrent
// use; mutations touching the same room are linearized by the lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{} // room id -> connection ids
	conns map[string]map[string]struct{} // connection id -> room ids
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]struct{}),
		conns: make(map[string]map[string]struct{}),
	}
}

// Join adds connID to room and returns the resulting member count. Joining
// a room the connection is already in is a no-op that still reports the
// current count, so callers re-broadcast without duplicating membership.
func (r *Registry) Join(room, connID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	members[connID] = struct{}{}

	joined, ok := r.conns[connID]
	if !ok {
		joined = make(map[string]struct{})
		r.conns[connID] = joined
	}
	joined[room] = struct{}{}

	return len(members)
}

// Leave removes connID from room. It returns the remaining count and
// whether the room had a presence entry at all; removing a connection that
// is not present is a no-op.
func (r *Registry) Leave(room, connID string) (count int, existed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(room, connID)
}

func (r *Registry) leaveLocked(room, connID string) (int, bool) {
	members, ok := r.rooms[room]
	if !ok {
		return 0, false
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}

	if joined, ok := r.conns[connID]; ok {
		delete(joined, room)
		if len(joined) == 0 {
			delete(r.conns, connID)
		}
	}
	return len(members), true
}

// Drop removes connID from every room it occupies and returns the updated
// count per affected room. A connection that never joined anything yields
// an empty result, not an error.
func (r *Registry) Drop(connID string) map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	affected := make(map[string]int)
	for room := range r.conns[connID] {
		count, _ := r.leaveLocked(room, connID)
		affected[room] = count
	}
	return affected
}

// Evict discards the presence entry for room entirely and returns the
// connection ids that were members. Used on room deletion; the members are
// not consulted first.
func (r *Registry) Evict(room string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.rooms[room]
	if members == nil {
		return nil
	}
	out := make([]string, 0, len(members))
	for connID := range members {
		out = append(out, connID)
		if joined, ok := r.conns[connID]; ok {
			delete(joined, room)
			if len(joined) == 0 {
				delete(r.conns, connID)
			}
		}
	}
	delete(r.rooms, room)
	return out
}

// Count returns the current member count of room (0 when absent).
func (r *Registry) Count(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// Members returns a snapshot of the connection ids currently in room.
func (r *Registry) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	if len(members) == 0 {
		return nil
	}
	out := make([]string, 0, len(members))
	for connID := range members {
		out = append(out, connID)
	}
	return out
}

// Rooms returns a snapshot of the room ids connID currently occupies.
func (r *Registry) Rooms(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	joined := r.conns[connID]
	if len(joined) == 0 {
		return nil
	}
	out := make([]string, 0, len(joined))
	for room := range joined {
		out = append(out, room)
	}
	return out
}

// ActiveRooms returns the number of rooms that currently have presence.
func (r *Registry) ActiveRooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
