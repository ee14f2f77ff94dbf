package validators

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"collabCanvas/internal/errs"
	"collabCanvas/internal/models"
)

const (
	maxNameLength   = 64
	minPasscodeSize = 4
)

var sessionNamePattern = regexp.MustCompile(`^[\p{L}\p{N} _.\-]+$`)

func ValidateCreateBoard(req *models.CreateBoardRequest) []error {
	var errors []error
	if req == nil {
		return []error{errs.ErrInvalidRequestBody}
	}
	if !validName(req.Name) {
		errors = append(errors, errs.ErrBoardName)
	}
	if req.Passcode != "" && utf8.RuneCountInString(req.Passcode) < minPasscodeSize {
		errors = append(errors, errs.ErrPasscodeTooShort)
	}
	return errors
}

func ValidateJoinBoard(req *models.JoinBoardRequest) []error {
	if req == nil {
		return []error{errs.ErrInvalidRequestBody}
	}
	if !validName(req.Name) {
		return []error{errs.ErrParticipantName}
	}
	return nil
}

// ValidateSessionName accepts letters, digits, spaces, dots, dashes and
// underscores so names stay usable as path segments.
func ValidateSessionName(name string) error {
	if !validName(name) || !sessionNamePattern.MatchString(name) {
		return errs.ErrSessionName
	}
	return nil
}

func validName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && utf8.RuneCountInString(name) <= maxNameLength
}
