// Package positionid implements GNU Backgammon compatible position IDs.
//
// A position ID is a 14-character base64 string packing both players'
// checker counts (points and bar, borne-off checkers implied) into 80 bits.
// The packed form doubles as a comparable Key for de-duplicating positions.
package positionid

import (
	"errors"
)

// Length is the length of a position ID string.
const Length = 14

// Base64 alphabet used for position ID encoding
const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Board is a position in gnubg layout: [side][point], where side 1 is the
// player on roll, side 0 the opponent, points 0-23 are counted from each
// side's own bear-off edge and index 24 is that side's bar.
type Board [2][25]uint8

// Key is the packed 80-bit form of a Board. Keys are comparable and may be
// used as map keys.
type Key [10]uint8

// ErrInvalid is returned when a position ID cannot be decoded.
var ErrInvalid = errors.New("invalid position ID")

// addBits sets nBits 1-bits in key starting at bitPos.
func addBits(key *Key, bitPos, nBits uint32) {
	k := bitPos / 8
	r := bitPos & 0x7
	b := ((uint32(1) << nBits) - 1) << r

	key[k] |= uint8(b)

	if k < 8 {
		key[k+1] |= uint8(b >> 8)
		key[k+2] |= uint8(b >> 16)
	} else if k == 8 {
		key[k+1] |= uint8(b >> 8)
	}
}

// MakeKey packs a board: for every point, one 1-bit per checker followed by
// a 0-bit separator.
func MakeKey(board Board) Key {
	var key Key
	var bitPos uint32

	for side := 0; side < 2; side++ {
		for pt := 0; pt < 25; pt++ {
			nc := uint32(board[side][pt])
			if nc > 0 {
				addBits(&key, bitPos, nc)
				bitPos += nc + 1
			} else {
				bitPos++
			}
		}
	}

	return key
}

// BoardFromKey unpacks a key.
func BoardFromKey(key Key) Board {
	var board Board
	side, pt := 0, 0

	for a := 0; a < len(key); a++ {
		cur := key[a]
		for k := 0; k < 8; k++ {
			if cur&0x1 != 0 {
				if side >= 2 || pt >= 25 {
					return board
				}
				board[side][pt]++
			} else {
				pt++
				if pt == 25 {
					side++
					pt = 0
				}
			}
			cur >>= 1
		}
	}

	return board
}

// Encode returns the base64 position ID of key.
func (key Key) Encode() string {
	result := make([]byte, Length)
	puch := key[:]

	for i := 0; i < 3; i++ {
		result[i*4] = base64Chars[puch[0]>>2]
		result[i*4+1] = base64Chars[((puch[0]&0x03)<<4)|(puch[1]>>4)]
		result[i*4+2] = base64Chars[((puch[1]&0x0F)<<2)|(puch[2]>>6)]
		result[i*4+3] = base64Chars[puch[2]&0x3F]
		puch = puch[3:]
	}

	result[12] = base64Chars[puch[0]>>2]
	result[13] = base64Chars[(puch[0]&0x03)<<4]

	return string(result)
}

// Encode returns the position ID of board.
func Encode(board Board) string {
	return MakeKey(board).Encode()
}

func base64Decode(ch byte) uint8 {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return ch - 'A'
	case ch >= 'a' && ch <= 'z':
		return ch - 'a' + 26
	case ch >= '0' && ch <= '9':
		return ch - '0' + 52
	case ch == '+':
		return 62
	case ch == '/':
		return 63
	}
	return 255
}

// Decode parses a position ID. Anything after the first 14 characters (for
// example a ":matchID" suffix) is ignored.
func Decode(posID string) (Board, error) {
	var key Key

	if len(posID) < Length {
		return Board{}, ErrInvalid
	}

	ach := make([]uint8, Length)
	for i := 0; i < Length; i++ {
		ach[i] = base64Decode(posID[i])
		if ach[i] == 255 {
			return Board{}, ErrInvalid
		}
	}

	pch := ach
	idx := 0
	for i := 0; i < 3; i++ {
		key[idx] = (pch[0] << 2) | (pch[1] >> 4)
		key[idx+1] = (pch[1] << 4) | (pch[2] >> 2)
		key[idx+2] = (pch[2] << 6) | pch[3]
		idx += 3
		pch = pch[4:]
	}
	key[9] = (pch[0] << 2) | (pch[1] >> 4)

	board := BoardFromKey(key)
	if !Check(board) {
		return board, ErrInvalid
	}

	return board, nil
}

// Check reports whether board could occur in play: no side with more than
// 15 checkers and no point held by both sides.
func Check(board Board) bool {
	var ac [2]uint32

	for i := 0; i < 25; i++ {
		ac[0] += uint32(board[0][i])
		ac[1] += uint32(board[1][i])
		if ac[0] > 15 || ac[1] > 15 {
			return false
		}
	}

	for i := 0; i < 24; i++ {
		if board[0][i] > 0 && board[1][23-i] > 0 {
			return false
		}
	}

	return true
}
