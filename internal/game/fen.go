package game

import (
	"fmt"
	"strconv"
	"strings"

	. "github.com/cricklet/raychess/internal/bitboards"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/zobrist"
)

const StartingFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func NewStartingPosition() Position {
	p, err := PositionFromFen(StartingFen)
	if !IsNil(err) {
		panic(err)
	}
	return p
}

func fenStringForPlayer(p Player) string {
	if p == White {
		return "w"
	}
	return "b"
}

func fenStringForEnPassant(enPassant Bitboard) string {
	if enPassant == 0 {
		return "-"
	}
	return StringFromBoardIndex(enPassant.FirstIndexOfOne())
}

func FenStringForBoard(b BoardArray) string {
	s := ""
	for rank := 7; rank >= 0; rank-- {
		numSpaces := 0
		for file := 0; file < 8; file++ {
			piece := b[rank*8+file]
			if piece == XX {
				numSpaces++
				continue
			}
			if numSpaces > 0 {
				s += fmt.Sprint(numSpaces)
				numSpaces = 0
			}
			s += piece.String()
		}
		if numSpaces > 0 {
			s += fmt.Sprint(numSpaces)
		}
		if rank != 0 {
			s += "/"
		}
	}
	return s
}

func (p *Position) Fen() string {
	return fmt.Sprintf("%v %v %v %v %v %v",
		FenStringForBoard(p.Board()),
		fenStringForPlayer(p.player),
		p.castlingRights,
		fenStringForEnPassant(p.enPassant),
		p.halfMoveClock,
		p.fullMoveNumber)
}

func boardFromFen(s string) (BoardArray, Error) {
	board := BoardArray{}
	rank, file := 7, 0
	for _, c := range s {
		if c == '/' {
			if file != 8 {
				return board, Errorf("rank %v has %v squares in '%v'", rank+1, file, s)
			}
			rank--
			file = 0
			if rank < 0 {
				return board, Errorf("too many ranks in '%v'", s)
			}
		} else if c >= '1' && c <= '8' {
			file += int(c - '0')
		} else if piece, err := PieceFromString(c); IsNil(err) {
			if file >= 8 {
				return board, Errorf("rank %v overflows in '%v'", rank+1, s)
			}
			board[rank*8+file] = piece
			file++
		} else {
			return board, Errorf("unknown character %q in '%v'", c, s)
		}
		if file > 8 {
			return board, Errorf("rank %v overflows in '%v'", rank+1, s)
		}
	}
	if rank != 0 || file != 8 {
		return board, Errorf("not enough squares in '%v'", s)
	}
	return board, NilError
}

// enPassantIsConsistent checks that the enemy could have just double pushed
// over square: it sits on the skipped rank, it and the origin are empty, and
// the pushed pawn stands in front of it.
func enPassantIsConsistent(board *BoardArray, player Player, square int) bool {
	target := FileRankFromIndex(square)
	expectedRank, forward := Rank(5), 8
	if player == Black {
		expectedRank, forward = Rank(2), -8
	}
	if target.Rank != expectedRank {
		return false
	}
	origin, pushed := square+forward, square-forward
	return board[square] == XX &&
		board[origin] == XX &&
		board[pushed] == PieceForPlayer[player.Other()][Pawn]
}

// PositionFromFen accepts the board and side to move followed by any prefix
// of castling, en passant, halfmove clock and fullmove number. Missing
// fields default to "- - 0 1".
func PositionFromFen(s string) (Position, Error) {
	ss := strings.Fields(s)
	if len(ss) < 2 || len(ss) > 6 {
		return Position{}, Errorf("wrong num %v of fields in '%v'", len(ss), s)
	}
	fields := []string{"", "", "-", "-", "0", "1"}
	copy(fields, ss)

	board, err := boardFromFen(fields[0])
	if !IsNil(err) {
		return Position{}, err
	}

	player, err := PlayerFromString(fields[1])
	if !IsNil(err) {
		return Position{}, Join(Errorf("invalid player in '%v'", s), err)
	}

	rights, err := CastlingRightsFromString(fields[2])
	if !IsNil(err) {
		return Position{}, Join(Errorf("invalid castling in '%v'", s), err)
	}

	enPassant := Bitboard(0)
	if fields[3] != "-" {
		square, err := BoardIndexFromString(fields[3])
		if !IsNil(err) {
			return Position{}, Join(Errorf("invalid en passant in '%v'", s), err)
		}
		if !enPassantIsConsistent(&board, player, square) {
			return Position{}, Errorf("en passant %v doesn't follow a double push in '%v'", fields[3], s)
		}
		enPassant = SingleBitboard(square)
	}

	halfMoveClock, parseErr := strconv.Atoi(fields[4])
	if parseErr != nil || halfMoveClock < 0 {
		return Position{}, Errorf("invalid halfmove clock '%v' in '%v'", fields[4], s)
	}
	fullMoveNumber, parseErr := strconv.Atoi(fields[5])
	if parseErr != nil || fullMoveNumber < 1 {
		return Position{}, Errorf("invalid fullmove number '%v' in '%v'", fields[5], s)
	}

	return NewPosition(board, player, rights, enPassant, halfMoveClock, fullMoveNumber)
}

func NewPosition(
	board BoardArray,
	player Player,
	rights CastlingRights,
	enPassant Bitboard,
	halfMoveClock int,
	fullMoveNumber int,
) (Position, Error) {
	p := Position{
		player:         player,
		castlingRights: rights,
		enPassant:      enPassant,
		halfMoveClock:  halfMoveClock,
		fullMoveNumber: fullMoveNumber,
	}
	for square, piece := range board {
		if piece == XX {
			continue
		}
		p.addPiece(piece.Player(), piece.PieceType(), square)
	}

	for player := White; player <= Black; player++ {
		if OnesCount(p.pieces[player][King]) != 1 {
			return Position{}, Errorf("%v must have exactly one king\n%v", player, board)
		}
	}

	// addPiece built the piece part of the key; recompute it whole so the
	// remaining fields are included.
	p.key = zobrist.KeyFrom(&p.pieces, player, rights, enPassant)
	return p, NilError
}
