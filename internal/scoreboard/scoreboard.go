// Package scoreboard projects a ranked top-N view of entity kill counts. The
// projection is pure derived data: it is rebuilt from the entity store when a
// relevant mutation marks it dirty and swapped in whole, never patched.
package scoreboard

import (
	"aeroclash/arena/internal/state"
)

// DefaultSize is the number of leaderboard rows published in snapshots.
const DefaultSize = 5

// Entry is one leaderboard row.
type Entry struct {
	ID    string `json:"id" msgpack:"id"`
	Name  string `json:"name" msgpack:"name"`
	Kills int    `json:"kills" msgpack:"kills"`
}

// Projector maintains the published top-N ranking.
type Projector struct {
	size    int
	dirty   bool
	entries []Entry
}

// NewProjector constructs a projector publishing at most size rows.
func NewProjector(size int) *Projector {
	if size <= 0 {
		size = DefaultSize
	}
	return &Projector{size: size, dirty: true}
}

// MarkDirty flags the ranking for a rebuild on the next Entries call. The room
// calls this on kill increments and on entity add/remove.
func (p *Projector) MarkDirty() {
	if p == nil {
		return
	}
	p.dirty = true
}

// Entries returns the current ranking, rebuilding it first when dirty. The
// returned slice is owned by the projector; callers must not mutate it.
func (p *Projector) Entries(entities *state.EntityStore) []Entry {
	if p == nil {
		return nil
	}
	if p.dirty {
		p.rebuild(entities)
		p.dirty = false
	}
	return p.entries
}

func (p *Projector) rebuild(entities *state.EntityStore) {
	if entities == nil {
		p.entries = nil
		return
	}
	ranked := entities.ByKills()
	if len(ranked) > p.size {
		ranked = ranked[:p.size]
	}
	//1.- Reuse the backing array across rebuilds; rankings swap wholesale.
	p.entries = p.entries[:0]
	for _, entity := range ranked {
		p.entries = append(p.entries, Entry{ID: entity.ID, Name: entity.Name, Kills: entity.Kills})
	}
}
