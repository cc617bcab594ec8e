// Package bots reconciles the bot population against a target occupancy so
// the arena stays busy as human sessions come and go.
package bots

import (
	"fmt"

	"github.com/google/uuid"

	"aeroclash/arena/internal/flavor"
	"aeroclash/arena/internal/geom"
	"aeroclash/arena/internal/state"
)

// DefaultTargetOccupancy is the total entity count the balancer aims for.
const DefaultTargetOccupancy = 8

// holdingAltitude parks freshly created bots far outside the playable volume
// until their first respawn assigns a real position.
const holdingAltitude = -5000.0

var callsigns = []string{
	"Vulture", "Mirage", "Talon", "Cyclone", "Banshee",
	"Spectre", "Dagger", "Havoc", "Tempest", "Reaper",
}

// Respawner places an entity back into the playable volume and marks it
// ready. The room authority provides the implementation.
type Respawner interface {
	Respawn(entity *state.Entity)
}

// Balancer adjusts the bot population whenever humans join or leave.
type Balancer struct {
	target int
	wave   int
	serial int
}

// NewBalancer constructs a balancer with the desired total occupancy.
func NewBalancer(target int) *Balancer {
	if target <= 0 {
		target = DefaultTargetOccupancy
	}
	return &Balancer{target: target}
}

// Target reports the configured total occupancy.
func (b *Balancer) Target() int {
	if b == nil {
		return 0
	}
	return b.target
}

// Rebalance reconciles the store against the target occupancy. It returns the
// identifiers of created and removed bots so the caller can track churn.
func (b *Balancer) Rebalance(entities *state.EntityStore, respawner Respawner) (added, removed []string) {
	if b == nil || entities == nil {
		return nil, nil
	}

	humans := entities.Humans()

	//1.- No bots play alone: an empty room sheds its whole bot population.
	if humans == 0 {
		for _, bot := range entities.Bots() {
			entities.Remove(bot.ID)
			removed = append(removed, bot.ID)
		}
		return nil, removed
	}

	total := entities.Len()
	switch {
	case total < b.target:
		//2.- Fill the deficit with fresh bots, respawned into play immediately.
		b.wave++
		for i := total; i < b.target; i++ {
			bot := b.newBot()
			entities.Add(bot)
			if respawner != nil {
				respawner.Respawn(bot)
			}
			added = append(added, bot.ID)
		}
	case total > b.target:
		//3.- Shed the excess, bots first; humans are never removed here.
		excess := total - b.target
		for _, bot := range entities.Bots() {
			if excess == 0 {
				break
			}
			entities.Remove(bot.ID)
			removed = append(removed, bot.ID)
			excess--
		}
	}
	return added, removed
}

func (b *Balancer) newBot() *state.Entity {
	b.serial++
	skill := 1 + b.wave%3
	profile := flavor.Describe(b.wave, skill)
	return &state.Entity{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("%s-%d", callsigns[(b.serial-1)%len(callsigns)], b.serial),
		Health:      state.MaxHealth,
		Orientation: geom.IdentityQuat(),
		Position:    geom.Vec3{Y: holdingAltitude},
		Bot:         true,
		Flavor: state.BotFlavor{
			AttackPattern: profile.AttackPattern,
			Evasion:       profile.Evasion,
			Difficulty:    profile.Difficulty,
		},
	}
}
