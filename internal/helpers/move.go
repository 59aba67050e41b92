package helpers

// Move packs a move into 28 bits:
//
//	bits  0-2   moved piece type
//	bits  3-5   promotion piece type (InvalidPiece when absent)
//	bits  6-8   captured piece type (InvalidPiece when absent)
//	bits  9-14  from square
//	bits 15-20  to square
//	bits 21-27  flags
type Move uint32

type MoveFlag uint32

const (
	NullFlag MoveFlag = 1 << iota
	CaptureFlag
	DoublePawnPushFlag
	KingsideCastleFlag
	QueensideCastleFlag
	EnPassantFlag
	PromotionFlag
)

const (
	_pieceShift     = 0
	_promotionShift = 3
	_capturedShift  = 6
	_fromShift      = 9
	_toShift        = 15
	_flagsShift     = 21

	_pieceMask  = 0x7
	_squareMask = 0x3f
	_flagsMask  = 0x7f
)

var NullMove = NewMove(0, 0, InvalidPiece, NullFlag)

func NewMove(from int, to int, piece PieceType, flags MoveFlag) Move {
	return Move(uint32(flags)<<_flagsShift |
		uint32(to)<<_toShift |
		uint32(from)<<_fromShift |
		uint32(InvalidPiece)<<_capturedShift |
		uint32(InvalidPiece)<<_promotionShift |
		uint32(piece))
}

func NewCapture(from int, to int, piece PieceType, captured PieceType) Move {
	return NewMove(from, to, piece, CaptureFlag).withCaptured(captured)
}

func NewEnPassant(from int, to int) Move {
	return NewMove(from, to, Pawn, EnPassantFlag).withCaptured(Pawn)
}

func (m Move) withCaptured(captured PieceType) Move {
	m &^= _pieceMask << _capturedShift
	return m | Move(captured)<<_capturedShift
}

func (m Move) WithPromotion(promotion PieceType) Move {
	m &^= _pieceMask << _promotionShift
	m |= Move(promotion) << _promotionShift
	return m | Move(PromotionFlag)<<_flagsShift
}

func (m Move) Piece() PieceType {
	return PieceType(m >> _pieceShift & _pieceMask)
}

func (m Move) Promotion() PieceType {
	return PieceType(m >> _promotionShift & _pieceMask)
}

func (m Move) Captured() PieceType {
	return PieceType(m >> _capturedShift & _pieceMask)
}

func (m Move) From() int {
	return int(m >> _fromShift & _squareMask)
}

func (m Move) To() int {
	return int(m >> _toShift & _squareMask)
}

func (m Move) Flags() MoveFlag {
	return MoveFlag(m >> _flagsShift & _flagsMask)
}

func (m Move) Is(flag MoveFlag) bool {
	return m.Flags()&flag != 0
}

func (m Move) IsNull() bool {
	return m.Is(NullFlag)
}

// IsCapture includes en passant.
func (m Move) IsCapture() bool {
	return m.Is(CaptureFlag | EnPassantFlag)
}

func (m Move) IsPromotion() bool {
	return m.Is(PromotionFlag)
}

func (m Move) IsCastle() bool {
	return m.Is(KingsideCastleFlag | QueensideCastleFlag)
}

// IsQuiet is true for moves that neither capture nor promote.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// String is the long algebraic form used by UCI, e.g. e2e4, e7e8q, e1g1.
func (m Move) String() string {
	if m.IsNull() {
		return "(none)"
	}
	result := StringFromBoardIndex(m.From()) + StringFromBoardIndex(m.To())
	if m.IsPromotion() {
		result += m.Promotion().String()
	}
	return result
}

// SanCastleString renders castles as O-O / O-O-O for display.
func (m Move) SanCastleString() string {
	if m.Is(KingsideCastleFlag) {
		return "O-O"
	}
	if m.Is(QueensideCastleFlag) {
		return "O-O-O"
	}
	return m.String()
}

func (m Move) DebugString() string {
	if m.IsCapture() {
		return StringFromBoardIndex(m.From()) + "x" + StringFromBoardIndex(m.To()) + m.Captured().String()
	}
	return m.String()
}

// MoveText is a parsed but not yet validated move, e.g. from a UCI command.
type MoveText struct {
	From      int
	To        int
	Promotion PieceType
}

func ParseMoveText(s string) (MoveText, Error) {
	if len(s) != 4 && len(s) != 5 {
		return MoveText{}, Errorf("invalid move %q", s)
	}
	from, fromErr := BoardIndexFromString(s[0:2])
	to, toErr := BoardIndexFromString(s[2:4])
	if !IsNil(fromErr) || !IsNil(toErr) {
		return MoveText{}, Join(Errorf("invalid move %q", s), fromErr, toErr)
	}

	promotion := InvalidPiece
	if len(s) == 5 {
		promotion = PieceTypeFromString(s[4:5])
		switch promotion {
		case Queen, Rook, Bishop, Knight:
		default:
			return MoveText{}, Errorf("invalid promotion in move %q", s)
		}
	}

	return MoveText{from, to, promotion}, NilError
}

func (t MoveText) Matches(m Move) bool {
	if m.From() != t.From || m.To() != t.To {
		return false
	}
	if m.IsPromotion() {
		return m.Promotion() == t.Promotion
	}
	return t.Promotion == InvalidPiece
}

// ScoredMove attaches a transient ordering value to a move.
type ScoredMove struct {
	Move  Move
	Value int
}
