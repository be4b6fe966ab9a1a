package config

import "time"

// Exploration is the default UCB exploration weight C.
const Exploration = 1.44

// SimCount is the default number of search iterations per move.
const SimCount = 100

// BasicConst divides the remaining time into a flat per-move share.
const BasicConst = 30

// EnhancedPeak is the ply around which the enhanced schedule spends the most time.
const EnhancedPeak = 15

// InitialTime is the whole-game budget, kept below the real limit on purpose.
const InitialTime = 300 * time.Second

// EarlyThreshold is the visit margin that ends a search early in fixed mode.
const EarlyThreshold = 5000

// TimeBonus rescales every allowance. 1 turns the bonus off.
const TimeBonus = 1.0

// MaxTurns bounds a locally played game.
const MaxTurns = 300
