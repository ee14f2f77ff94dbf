package models

import "github.com/golang-jwt/jwt/v5"

type Claims struct {
	ParticipantID string `json:"participant_id"`
	BoardID       uint   `json:"board_id"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	jwt.RegisteredClaims
}
