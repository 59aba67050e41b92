package search

import (
	"fmt"

	. "github.com/cricklet/raychess/internal/helpers"
)

const Inf int = 999999

// Scores this close to Inf are mates, counted in plies from the root.
const _mateWindow = MaxPly * 2

func IsMate(score int) bool {
	return Abs(score) > Inf-_mateWindow
}

// MatedScore is the score of the side to move when it is checkmated ply
// plies from the root. Shorter mates score further from zero.
func MatedScore(ply int) int {
	return -(Inf - ply)
}

// MateInPlies is the number of plies until the mate a score announces.
// Positive means the side to move mates.
func MateInPlies(score int) int {
	if score > 0 {
		return Inf - score
	}
	return -(Inf + score)
}

// MateInMoves converts a mate score to the full moves a UCI "score mate"
// reports.
func MateInMoves(score int) int {
	plies := MateInPlies(score)
	if plies > 0 {
		return (plies + 1) / 2
	}
	return plies / 2
}

func MateInNScore(plies int) int {
	if plies < 0 {
		return -Inf - plies
	}
	return Inf - plies
}

// scoreToTable makes a mate score relative to the node storing it so the
// entry stays valid when reached at another ply.
func scoreToTable(score int, ply int) int {
	if score > Inf-_mateWindow {
		return score + ply
	}
	if score < -Inf+_mateWindow {
		return score - ply
	}
	return score
}

func scoreFromTable(score int, ply int) int {
	if score > Inf-_mateWindow {
		return score - ply
	}
	if score < -Inf+_mateWindow {
		return score + ply
	}
	return score
}

func ScoreString(score int) string {
	if score > Inf-_mateWindow {
		return fmt.Sprint("mate+", Inf-score)
	}
	if score < -Inf+_mateWindow {
		return fmt.Sprint("mate-", Inf+score)
	}
	return fmt.Sprint(score)
}

// UciScoreString renders "cp X" or "mate N".
func UciScoreString(score int) string {
	if IsMate(score) {
		return fmt.Sprint("mate ", MateInMoves(score))
	}
	return fmt.Sprint("cp ", score)
}
