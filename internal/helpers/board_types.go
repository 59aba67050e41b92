package helpers

import "strings"

type File uint
type Rank uint

type FileRank struct {
	File File
	Rank Rank
}

type Player uint

const (
	White Player = iota
	Black
)

var _playerStrings = [2]string{
	"white", "black",
}

func (p Player) String() string {
	return _playerStrings[p]
}

func (p Player) Other() Player {
	return 1 - p
}

type Piece uint

const (
	XX Piece = iota
	WR
	WN
	WB
	WK
	WQ
	WP
	BR
	BN
	BB
	BK
	BQ
	BP
)

// PieceType values fit in three bits so they can be packed into a Move.
type PieceType uint

const (
	Rook PieceType = iota
	Knight
	Bishop
	King
	Queen
	Pawn
	InvalidPiece
)

var AllPieceTypes = [6]PieceType{Rook, Knight, Bishop, King, Queen, Pawn}

func (p PieceType) String() string {
	return [8]string{
		"r", "n", "b", "k", "q", "p", "?", "?",
	}[p&7]
}

func (p PieceType) IsValid() bool {
	return p <= Pawn
}

func (p PieceType) IsSliding() bool {
	return p == Rook || p == Bishop || p == Queen
}

func PieceTypeFromString(s string) PieceType {
	switch s {
	case "r":
		return Rook
	case "n":
		return Knight
	case "b":
		return Bishop
	case "k":
		return King
	case "q":
		return Queen
	case "p":
		return Pawn
	default:
		return InvalidPiece
	}
}

func (f File) String() string {
	return [8]string{
		"a", "b", "c", "d", "e", "f", "g", "h",
	}[f]
}
func (r Rank) String() string {
	return [8]string{
		"1", "2", "3", "4", "5", "6", "7", "8",
	}[r]
}

func RankFromChar(c byte) (Rank, Error) {
	rank := int(c) - '1'
	if rank < 0 || rank >= 8 {
		return 0, Errorf("rank invalid %q", c)
	}
	return Rank(rank), NilError
}

func FileFromChar(c byte) (File, Error) {
	file := int(c) - 'a'
	if file < 0 || file >= 8 {
		return 0, Errorf("file invalid %q", c)
	}
	return File(file), NilError
}

func (v FileRank) String() string {
	return v.File.String() + v.Rank.String()
}

func FileRankFromString(s string) (FileRank, Error) {
	if len(s) != 2 {
		return FileRank{}, Errorf("invalid location %v", s)
	}

	file, fileErr := FileFromChar(s[0])
	rank, rankErr := RankFromChar(s[1])

	if !IsNil(fileErr) || !IsNil(rankErr) {
		return FileRank{}, Join(Errorf("invalid location %v", s), fileErr, rankErr)
	}

	return FileRank{file, rank}, NilError
}

func IndexFromFileRank(location FileRank) int {
	return int(location.Rank)*8 + int(location.File)
}

func FileRankFromIndex(index int) FileRank {
	f := File(index & 0b111)
	r := Rank(index >> 3)
	return FileRank{f, r}
}

func StringFromBoardIndex(index int) string {
	return FileRankFromIndex(index).String()
}

func BoardIndexFromString(s string) (int, Error) {
	location, err := FileRankFromString(s)
	if !IsNil(err) {
		return 0, err
	}
	return IndexFromFileRank(location), NilError
}

// MustBoardIndex is for literal squares in tables and tests.
func MustBoardIndex(s string) int {
	index, err := BoardIndexFromString(s)
	if !IsNil(err) {
		panic(err)
	}
	return index
}

func PlayerFromString(c string) (Player, Error) {
	switch c {
	case "b":
		return Black, NilError
	case "w":
		return White, NilError
	default:
		return White, Errorf("invalid player char %v", c)
	}
}

var PieceForPlayer [2][8]Piece = func() [2][8]Piece {
	result := [2][8]Piece{}

	result[White][Rook] = WR
	result[White][Knight] = WN
	result[White][Bishop] = WB
	result[White][King] = WK
	result[White][Queen] = WQ
	result[White][Pawn] = WP

	result[Black][Rook] = BR
	result[Black][Knight] = BN
	result[Black][Bishop] = BB
	result[Black][King] = BK
	result[Black][Queen] = BQ
	result[Black][Pawn] = BP

	return result
}()

func (p Piece) PieceType() PieceType {
	if p == XX {
		return InvalidPiece
	}
	return PieceType((p - 1) % 6)
}

func (p Piece) Player() Player {
	if p < BR {
		return White
	}
	return Black
}

func (p Piece) IsWhite() bool {
	return p <= WP && p >= WR
}

func PieceFromString(c rune) (Piece, Error) {
	switch c {
	case 'R':
		return WR, NilError
	case 'N':
		return WN, NilError
	case 'B':
		return WB, NilError
	case 'K':
		return WK, NilError
	case 'Q':
		return WQ, NilError
	case 'P':
		return WP, NilError
	case 'r':
		return BR, NilError
	case 'n':
		return BN, NilError
	case 'b':
		return BB, NilError
	case 'k':
		return BK, NilError
	case 'q':
		return BQ, NilError
	case 'p':
		return BP, NilError
	default:
		return XX, Errorf("invalid piece %q", c)
	}
}

func (p Piece) String() string {
	return []string{
		" ",
		"R", "N", "B", "K", "Q", "P",
		"r", "n", "b", "k", "q", "p",
	}[p]
}

func (p PieceType) Unicode() string {
	return []string{
		"♜", "♞", "♝", "♚", "♛", "♟", " ",
	}[p]
}

type CastlingSide int

const (
	Kingside CastlingSide = iota
	Queenside
)

var AllCastlingSides = [2]CastlingSide{Kingside, Queenside}

// CastlingRights packs the four rights as bits: K=1, Q=2, k=4, q=8.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside

	NoCastlingRights  CastlingRights = 0
	AllCastlingRights CastlingRights = 0xf
)

func CastlingRight(player Player, side CastlingSide) CastlingRights {
	return CastlingRights(1) << (2*uint(player) + uint(side))
}

func (c CastlingRights) Has(player Player, side CastlingSide) bool {
	return c&CastlingRight(player, side) != 0
}

func (c CastlingRights) String() string {
	if c == NoCastlingRights {
		return "-"
	}
	result := ""
	for i, s := range []string{"K", "Q", "k", "q"} {
		if c&(1<<i) != 0 {
			result += s
		}
	}
	return result
}

func CastlingRightsFromString(s string) (CastlingRights, Error) {
	if s == "-" {
		return NoCastlingRights, NilError
	}
	result := NoCastlingRights
	for _, c := range s {
		i := strings.IndexRune("KQkq", c)
		if i < 0 {
			return NoCastlingRights, Errorf("invalid castling rights %v", s)
		}
		result |= 1 << i
	}
	return result, NilError
}

// BoardArray is indexed a1=0 .. h8=63.
type BoardArray [64]Piece

func (b BoardArray) String() string {
	result := ""
	for rank := 7; rank >= 0; rank-- {
		row := b[rank*8 : (rank+1)*8]
		for _, p := range row {
			if p == XX {
				result += "."
			} else {
				result += p.String()
			}
		}
		if rank != 0 {
			result += "\n"
		}
	}
	return result
}

const _hintForeground = "\033[38;5;244m"
const _whiteForeground = "\033[38;5;255m"
const _blackForeground = "\033[38;5;232m"
const _whiteBackground = "\033[48;5;244m"
const _blackBackground = "\033[48;5;243m"
const _resetColors = "\x1b[0m"

func (b BoardArray) Unicode() string {
	result := "  "
	for file := 0; file < 8; file++ {
		result += _hintForeground + " " + File(file).String() + " " + _resetColors
	}
	result += "\n"

	for rank := 7; rank >= 0; rank-- {
		result += _hintForeground + Rank(rank).String() + " " + _resetColors
		for file := 0; file < 8; file++ {
			piece := b[rank*8+file]

			if (file+rank)%2 == 1 {
				result += _whiteBackground
			} else {
				result += _blackBackground
			}
			if piece.IsWhite() {
				result += _whiteForeground
			} else {
				result += _blackForeground
			}

			result += " " + piece.PieceType().Unicode() + " " + _resetColors
		}
		result += "\n"
	}

	return result
}
