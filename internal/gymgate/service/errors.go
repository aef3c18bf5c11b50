package service

import (
	"errors"
	"fmt"
)

// Component failures cross service boundaries as wrapped sentinels;
// callers discriminate with errors.Is. Nothing in this package panics
// across a boundary.
var (
	ErrNotConfigured       = errors.New("no active integration settings for branch")
	ErrAuthFailure         = errors.New("vendor token exchange rejected")
	ErrSubscriptionFailure = errors.New("vendor subscription failed")
	ErrPollFailure         = errors.New("vendor message poll failed")
	ErrNoDeviceConfigured  = errors.New("no device configured for branch")
	ErrMemberNotFound      = errors.New("member not found")
	ErrUnknownDeviceType   = errors.New("unknown device type")
)

func wrapPollFailure(err error) error {
	return fmt.Errorf("%w: %v", ErrPollFailure, err)
}
