// Package flavor generates the descriptive strings attached to bot opponents.
// The simulation treats the output as opaque display metadata; nothing here
// ever feeds back into a control decision.
package flavor

// Profile is the cosmetic description for one opponent.
type Profile struct {
	AttackPattern string
	Evasion       string
	Difficulty    string
}

var attackPatterns = []string{
	"head-on strafing runs",
	"high yo-yo ambushes",
	"slashing boom-and-zoom dives",
	"tight pursuit curves",
	"low-altitude ridge hugging",
	"wide flanking spirals",
}

var evasionTactics = []string{
	"barrel rolls under fire",
	"hard climbing breaks",
	"terrain-masked escapes",
	"scissor weaves",
	"split-S dives",
}

var difficultyLabels = []string{
	"rookie",
	"seasoned",
	"veteran",
	"ace",
	"nightmare",
}

// Describe derives a deterministic profile from the wave number and skill
// level, so the same inputs always label an opponent the same way.
func Describe(waveNumber, skillLevel int) Profile {
	if waveNumber < 0 {
		waveNumber = 0
	}
	if skillLevel < 0 {
		skillLevel = 0
	}
	//1.- Mix the two inputs with co-prime strides so neighbouring waves do not
	// repeat the same combination.
	mix := waveNumber*7 + skillLevel*13
	difficulty := skillLevel
	if difficulty >= len(difficultyLabels) {
		difficulty = len(difficultyLabels) - 1
	}
	return Profile{
		AttackPattern: attackPatterns[mix%len(attackPatterns)],
		Evasion:       evasionTactics[(mix/len(attackPatterns))%len(evasionTactics)],
		Difficulty:    difficultyLabels[difficulty],
	}
}
