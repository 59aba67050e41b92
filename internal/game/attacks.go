package game

import (
	. "github.com/cricklet/raychess/internal/bitboards"
	. "github.com/cricklet/raychess/internal/helpers"
)

// SquareUnderAttack reports whether any piece of attacker hits square. It
// looks outward from the square: a knight on square attacks exactly the
// squares a knight could attack square from, and likewise for the others.
func (p *Position) SquareUnderAttack(attacker Player, square int) bool {
	pieces := &p.pieces[attacker]
	if PawnAttacks[attacker.Other()][square]&pieces[Pawn] != 0 {
		return true
	}
	if KnightAttacks[square]&pieces[Knight] != 0 {
		return true
	}
	if KingAttacks[square]&pieces[King] != 0 {
		return true
	}
	if BishopAttacks(square, p.occupied)&(pieces[Bishop]|pieces[Queen]) != 0 {
		return true
	}
	if RookAttacks(square, p.occupied)&(pieces[Rook]|pieces[Queen]) != 0 {
		return true
	}
	return false
}

func (p *Position) IsInCheck(player Player) bool {
	king := p.pieces[player][King]
	if king == 0 {
		return false
	}
	return p.SquareUnderAttack(player.Other(), king.FirstIndexOfOne())
}

// AttacksForSquare is where a piece on square could capture or move to,
// ignoring pins. Pawns only count squares holding enemy pieces other than
// the king; other pieces count every square not holding their own pieces.
func (p *Position) AttacksForSquare(pieceType PieceType, player Player, square int) Bitboard {
	switch pieceType {
	case Pawn:
		return PawnAttacks[player][square] & p.Attackable(player.Other())
	case Knight, King:
		return NonSlidingAttacks(pieceType, player, square) &^ p.all[player]
	default:
		return SlidingAttacks(pieceType, square, p.occupied) &^ p.all[player]
	}
}

// CanCastle holds when the right is still present, the player is not in
// check, the squares between king and rook are empty, and the king does not
// pass through or land on an attacked square.
func (p *Position) CanCastle(player Player, side CastlingSide) bool {
	if !p.castlingRights.Has(player, side) {
		return false
	}
	c := &_castles[player][side]
	if p.occupied&c.path != 0 {
		return false
	}
	// a missing rook means the rights are stale, e.g. from a hand-written FEN
	if p.pieces[player][Rook]&SingleBitboard(c.rookFrom) == 0 ||
		p.pieces[player][King]&SingleBitboard(c.kingFrom) == 0 {
		return false
	}
	enemy := player.Other()
	if p.SquareUnderAttack(enemy, c.kingFrom) {
		return false
	}
	for _, square := range c.safe {
		if p.SquareUnderAttack(enemy, square) {
			return false
		}
	}
	return true
}
