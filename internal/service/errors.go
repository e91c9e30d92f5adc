package service

import "errors"

// Typed errors so the delivery layer can map them to HTTP status codes.
var (
	ErrRunNotFound     = errors.New("analysis run not found")
	ErrRunNotCompleted = errors.New("analysis run has not completed yet")
	ErrInvalidCourseID = errors.New("invalid course id")
	ErrNoAssignments   = errors.New("no assignments found in course")
	ErrNoStudents      = errors.New("no active students found in course")
)
