package bitboards

type Dir int

const (
	N Dir = iota
	S
	E
	W
	NE
	NW
	SE
	SW

	NumDirs
)

var RookDirs = [4]Dir{N, S, E, W}
var BishopDirs = [4]Dir{NE, NW, SE, SW}

// forward rays run toward higher square indices and are cut at their lowest
// blocker; the others are cut at their highest blocker.
var _forward = [NumDirs]bool{
	N:  true,
	E:  true,
	NE: true,
	NW: true,
}

func (d Dir) IsForward() bool {
	return _forward[d]
}

func (d Dir) String() string {
	return [NumDirs]string{"N", "S", "E", "W", "NE", "NW", "SE", "SW"}[d]
}

// Rays[dir][square] holds every square reachable from square in dir on an
// empty board, excluding square itself.
var Rays [NumDirs][64]Bitboard

func initRays() {
	for square := 0; square < 64; square++ {
		row, col := square/8, square%8

		Rays[N][square] = Bitboard(0x0101010101010100) << square
		Rays[S][square] = Bitboard(0x0080808080808080) >> (63 - square)
		Rays[E][square] = 2 * ((Bitboard(1) << (square | 7)) - (Bitboard(1) << square))
		Rays[W][square] = (Bitboard(1) << square) - (Bitboard(1) << (square & 56))

		Rays[NW][square] = ShiftWest(0x102040810204000, 7-col) << (row * 8)
		Rays[NE][square] = ShiftEast(0x8040201008040200, col) << (row * 8)
		Rays[SW][square] = ShiftWest(0x40201008040201, 7-col) >> ((7 - row) * 8)
		Rays[SE][square] = ShiftEast(0x2040810204080, col) >> ((7 - row) * 8)
	}
}

// BlockedRay returns the ray from square in dir up to and including the
// first occupied square.
func BlockedRay(dir Dir, square int, occupied Bitboard) Bitboard {
	ray := Rays[dir][square]
	blockers := ray & occupied
	if blockers == 0 {
		return ray
	}

	var blocker int
	if dir.IsForward() {
		blocker = blockers.FirstIndexOfOne()
	} else {
		blocker = blockers.LastIndexOfOne()
	}
	return ray &^ Rays[dir][blocker]
}
