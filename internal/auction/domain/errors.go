package domain

import "errors"

var (
	ErrAuctionNotFound     = errors.New("auction not found")
	ErrAuctionEnded        = errors.New("auction already ended")
	ErrAuctionExpired      = errors.New("auction bidding window has expired")
	ErrAuctionNotExpired   = errors.New("auction has not expired yet")
	ErrDurationTooShort    = errors.New("auction duration is below the minimum")
	ErrInvalidReservePrice = errors.New("reserve price cannot be negative")
	ErrBidTooLow           = errors.New("bid does not exceed the standing bid")
	ErrReservePriceNotMet  = errors.New("reserve price not met")
	ErrSellerCannotBid     = errors.New("seller cannot bid on their own auction")
	ErrNotSeller           = errors.New("caller is not the auction seller")
	ErrNothingToWithdraw   = errors.New("no withdrawable balance for caller")
	ErrOperationInProgress = errors.New("another engine operation is in progress")
)
