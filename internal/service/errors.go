package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAudioNotFound      = errors.New("audio file not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrBrandExists        = errors.New("brand already exists")
	ErrBrandNotFound      = errors.New("brand not found")
	ErrDiscountInvalid    = errors.New("discount must be between 1 and 100")
	ErrDiscountExists     = errors.New("discount option already exists")
	ErrDiscountNotFound   = errors.New("discount option not found")
	ErrUnknownSpotSlot    = errors.New("unknown spot slot")
	ErrSpotSlotEmpty      = errors.New("spot slot has no audio assigned")
	ErrUnknownTheme       = errors.New("unknown theme")
	ErrEmptyMessage       = errors.New("message is empty")
)
