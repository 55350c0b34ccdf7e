package meta

// GO_ROUTINES is the default number of goroutines an automated player
// searches with.
const GO_ROUTINES = 8

// EPISODES is the default number of rollout episodes per candidate move.
const EPISODES = 16

// WITH_CUTOFF caps the turns played out in one rollout episode.
const WITH_CUTOFF = 40
