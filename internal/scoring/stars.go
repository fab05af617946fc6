// Package scoring turns completed-session results into star rewards.
// Everything here is a pure function so reward rules can be tested in
// isolation from the engine.
package scoring

import "time"

// Bonus stars for high accuracy and fast completion, and the credit
// multiplier applied when the time limit was exceeded but the accuracy
// target was still met.
const (
	accuracyBonusThreshold = 90
	accuracyBonus          = 5
	speedBonusFraction     = 0.7
	speedBonus             = 5
	lateCreditFactor       = 0.7
)

// Input carries the completed-session facts the reward rules need.
type Input struct {
	// Accuracy is a percentage from 0 to 100.
	Accuracy int
	// TargetAccuracy is the configured pass threshold for the task.
	TargetAccuracy int
	TimeSpent      time.Duration
	TimeLimit      time.Duration
	// StarsReward is the base reward configured on the task.
	StarsReward int
}

// Stars computes the stars awarded for a completed session.
//
// Meeting both the accuracy target and the time limit earns the full base
// reward, plus 5 bonus stars for 90%+ accuracy and another 5 for
// finishing within 70% of the limit. Meeting only the accuracy target
// earns 70% of the base reward, rounded down. Missing the accuracy
// target earns nothing.
func Stars(in Input) int {
	accuracyMet := in.Accuracy >= in.TargetAccuracy
	withinTime := in.TimeSpent <= in.TimeLimit

	switch {
	case accuracyMet && withinTime:
		stars := in.StarsReward
		if in.Accuracy >= accuracyBonusThreshold {
			stars += accuracyBonus
		}
		if float64(in.TimeSpent) <= float64(in.TimeLimit)*speedBonusFraction {
			stars += speedBonus
		}
		return stars
	case accuracyMet:
		return int(float64(in.StarsReward) * lateCreditFactor)
	default:
		return 0
	}
}
