package services

import "errors"

// Every rejected operation surfaces one of these so handlers can return a
// short, specific explanation instead of a generic failure. None of them is
// fatal to the process; each operation stands alone.
var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrSeasonNotFound = errors.New("there is no season with that name")
	ErrDeckNotFound   = errors.New("there is no deck with that name")
	ErrNoActiveSeason = errors.New("there is no current season")

	ErrInvalidPlayers   = errors.New("a match needs 2 to 4 unique players")
	ErrAlreadyConfirmed = errors.New("you have already confirmed this match")
	ErrAlreadyDisputed  = errors.New("this match has already been disputed")
	ErrNotAParticipant  = errors.New("you are not part of this match")

	ErrForbidden = errors.New("you do not have permission to do this")

	ErrSeasonActive    = errors.New("there is already an active season")
	ErrSeasonNameTaken = errors.New("there is already a season with that name")
	ErrDeckLimit       = errors.New("you have reached the deck limit")
)
