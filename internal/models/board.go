package models

import "gorm.io/gorm"

// Board is a persistent drawing room. The canvas content itself lives in the
// relay; only the room identity and its optional passcode are stored.
type Board struct {
	gorm.Model
	Name         string `gorm:"not null" json:"name"`
	PasscodeHash string `json:"-"`
	Protected    bool   `gorm:"default:false" json:"protected"`
	CanvasWidth  int    `json:"canvas_width"`
	CanvasHeight int    `json:"canvas_height"`
}

type CreateBoardRequest struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

type JoinBoardRequest struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

type JoinBoardResponse struct {
	Token         string `json:"token"`
	ParticipantID string `json:"participant_id"`
	Color         string `json:"color"`
	Board         *Board `json:"board"`
}
