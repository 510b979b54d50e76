package domain

import "errors"

var (
	// ErrParticipantNotFound is returned when a wallet acts before joining.
	ErrParticipantNotFound = errors.New("you have not joined this quiz")
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizExists is returned by stores when a quiz id is already taken.
	ErrQuizExists = errors.New("quiz already exists")
	// ErrQuizPrivate indicates the quiz has not been published.
	ErrQuizPrivate = errors.New("this quiz is private")
	// ErrQuizFull indicates the participant cap was reached.
	ErrQuizFull = errors.New("the number of participants for this quiz has been reached")
	// ErrAlreadyParticipated indicates the wallet already joined this quiz.
	ErrAlreadyParticipated = errors.New("you have already participated in this quiz")
	// ErrNoQuestions is returned when generation produced no usable questions.
	ErrNoQuestions = errors.New("could not generate quiz")
	// ErrInvalidAnswer indicates a submitted answer value could not be read.
	ErrInvalidAnswer = errors.New("invalid answer")
)
