package entity

import "errors"

// Domain errors for the clip library and session aggregates.
var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrPlaylistNotFound   = errors.New("playlist not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCollectionNotEmpty = errors.New("collection still contains videos")
	ErrMediaNotFound      = errors.New("media blob not found")

	ErrInvalidVideoID        = errors.New("invalid video ID")
	ErrInvalidCollectionName = errors.New("invalid collection name")
	ErrInvalidReviewType     = errors.New("invalid review type")
	ErrInvalidPlayIndex      = errors.New("play index out of range")
	ErrInvalidProgress       = errors.New("invalid playback progress")
	ErrEmptyMedia            = errors.New("media content is empty")
)
