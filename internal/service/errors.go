package service

import "errors"

// Domain errors. Handlers map these onto response codes.
var (
	ErrSpreadsheetAccess        = errors.New("unable to access spreadsheet")
	ErrInvalidStoredCredentials = errors.New("stored credentials are invalid")
	ErrNotAuthorized            = errors.New("no stored credentials for user")
	ErrMalformedRequest         = errors.New("malformed request")
	ErrExamAlreadyTaken         = errors.New("exam already taken")
	ErrIncorrectExamID          = errors.New("incorrect exam ID requested")
	ErrIncompleteAnswers        = errors.New("answers missing for some questions")
	ErrExamNotFound             = errors.New("exam not found")
	ErrResponseNotRecorded      = errors.New("submission saved but response sheet not updated")
)
