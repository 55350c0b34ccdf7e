package searcher

// Rollout rewards, from the mover's perspective
const WIN = 1.0
const LOSS = -WIN

// MAX_CUTOFF bounds the turns played out in a single rollout episode.
const MAX_CUTOFF = 200
