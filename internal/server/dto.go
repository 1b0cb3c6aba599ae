package server

import (
	"ProjectKiosk/internal/kiosk"
)

// Inbound message types.
const (
	inStart          = "start"
	inContinue       = "continue"
	inChoose         = "choose"
	inGoBack         = "go_back"
	inScan           = "scan"
	inCheckoutAdd    = "checkout:add"
	inCheckoutRemove = "checkout:remove"
	inRevealSkip     = "reveal:skip"
	inCardDismiss    = "card:dismiss"
	inInboxOpen      = "inbox:open"
	inScoreContinue  = "score:continue"
	inReset          = "reset"
	inView           = "view"
)

// Connection-level outbound types, alongside the kiosk message types.
const (
	msgSession = "session"
	msgView    = "view"
	msgError   = "error"
)

type chooseDTO struct {
	Index int `json:"index"`
}

type itemDTO struct {
	Item string `json:"item"`
}

type sessionDTO struct {
	SessionID string     `json:"session_id"`
	View      kiosk.View `json:"view"`
}

type errorDTO struct {
	For     string `json:"for"`
	Message string `json:"message"`
}
