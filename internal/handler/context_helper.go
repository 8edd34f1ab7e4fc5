package handler

import "time"

// timeNow is stubbed in tests that pin the ballot window.
var timeNow = func() time.Time { return time.Now().UTC() }
